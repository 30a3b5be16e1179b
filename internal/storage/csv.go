package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ppiankov/tautohetohe/internal/model"
	"github.com/ppiankov/tautohetohe/internal/pipeline"
)

// CSVSink writes one day index and one utterance file per volume into the
// output directory and appends the same rows to the master files
type CSVSink struct {
	outputDir     string
	dayIndexFile  string
	utteranceFile string
	mu            sync.Mutex
}

// NewCSVSink creates the output directory if needed
func NewCSVSink(outputDir, dayIndexFile, utteranceFile string) (*CSVSink, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &CSVSink{
		outputDir:     outputDir,
		dayIndexFile:  dayIndexFile,
		utteranceFile: utteranceFile,
	}, nil
}

// VolumeFiles returns the per-volume day index and utterance paths
func (s *CSVSink) VolumeFiles(name string) (days, utterances string) {
	return filepath.Join(s.outputDir, name+"rāindex.csv"),
		filepath.Join(s.outputDir, name+"reomāori.csv")
}

// WriteVolume writes res to the per-volume files, then appends it to the
// master files
func (s *CSVSink) WriteVolume(ctx context.Context, res *pipeline.VolumeResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	days := make([][]string, 0, len(res.Days))
	for _, d := range res.Days {
		days = append(days, dayRow(d))
	}
	utterances := make([][]string, 0, len(res.Utterances))
	for _, u := range res.Utterances {
		utterances = append(utterances, utteranceRow(u))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dayPath, uttPath := s.VolumeFiles(res.Volume.Name)
	if err := writeFile(dayPath, model.DayIndexFields, days); err != nil {
		return fmt.Errorf("volume %s: %w", res.Volume.Name, err)
	}
	if err := writeFile(uttPath, model.UtteranceFields, utterances); err != nil {
		return fmt.Errorf("volume %s: %w", res.Volume.Name, err)
	}

	if err := appendMasters([]masterAppend{
		{s.dayIndexFile, model.DayIndexFields, days},
		{s.utteranceFile, model.UtteranceFields, utterances},
	}); err != nil {
		return fmt.Errorf("volume %s: %w", res.Volume.Name, err)
	}
	return nil
}

type masterAppend struct {
	path   string
	header []string
	rows   [][]string
}

// appendMasters appends to every master file or to none. On failure each
// master already touched is cut back to its previous size, so a retried
// volume never duplicates rows.
func appendMasters(appends []masterAppend) error {
	type mark struct {
		path    string
		size    int64
		existed bool
	}
	var touched []mark
	rollback := func() {
		for _, m := range touched {
			if m.existed {
				_ = os.Truncate(m.path, m.size)
			} else {
				_ = os.Remove(m.path)
			}
		}
	}

	for _, a := range appends {
		if a.path == "" {
			continue
		}
		m := mark{path: a.path}
		info, err := os.Stat(a.path)
		switch {
		case err == nil:
			m.existed, m.size = true, info.Size()
		case !errors.Is(err, os.ErrNotExist):
			rollback()
			return fmt.Errorf("stat %s: %w", a.path, err)
		}

		touched = append(touched, m)
		if err := appendFile(a.path, a.header, a.rows); err != nil {
			rollback()
			return err
		}
	}
	return nil
}

// Close is a no-op; every write closes its files
func (s *CSVSink) Close() error { return nil }

// writeFile replaces path with header and rows
func writeFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return writeRows(f, path, header, rows)
}

// appendFile appends rows to path, writing header only when the file is new
func appendFile(path string, header []string, rows [][]string) error {
	_, err := os.Stat(path)
	fresh := errors.Is(err, os.ErrNotExist)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if !fresh {
		header = nil
	}
	return writeRows(f, path, header, rows)
}

func writeRows(f *os.File, path string, header []string, rows [][]string) error {
	w := csv.NewWriter(f)
	if header != nil {
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
