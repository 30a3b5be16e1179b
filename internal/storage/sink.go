// Package storage persists extracted day and utterance records.
package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ppiankov/tautohetohe/internal/model"
	"github.com/ppiankov/tautohetohe/internal/pipeline"
)

// Sink receives the records of finished volumes. Implementations are safe
// for concurrent use by batch workers.
type Sink interface {
	WriteVolume(ctx context.Context, res *pipeline.VolumeResult) error
	Close() error
}

// New opens the sink selected by cfg.Storage.Driver
func New(cfg *model.Config) (Sink, error) {
	switch cfg.Storage.Driver {
	case "", model.StorageCSV:
		s, err := NewCSVSink(cfg.Paths.OutputDir, cfg.Paths.DayIndexFile, cfg.Paths.UtteranceFile)
		if err != nil {
			return nil, err
		}
		return s, nil
	case model.StorageSQLite:
		s, err := OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// dayRow renders d in model.DayIndexFields order
func dayRow(d model.DayRecord) []string {
	return []string{
		d.URL,
		d.Volume,
		d.Date,
		strconv.Itoa(d.Target),
		strconv.Itoa(d.Ambiguous),
		strconv.Itoa(d.Other),
		formatPercent(d.Percent),
		d.Retrieved,
		d.Format,
		strconv.FormatBool(d.Incomplete),
	}
}

// utteranceRow renders u in model.UtteranceFields order
func utteranceRow(u model.UtteranceRecord) []string {
	return []string{
		u.URL,
		u.Volume,
		u.Date,
		strconv.Itoa(u.Sequence),
		u.Speaker,
		strconv.Itoa(u.Target),
		strconv.Itoa(u.Ambiguous),
		strconv.Itoa(u.Other),
		formatPercent(u.Percent),
		u.Text,
	}
}
