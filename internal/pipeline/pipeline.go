package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/tautohetohe/internal/extract"
	"github.com/ppiankov/tautohetohe/internal/lang"
	"github.com/ppiankov/tautohetohe/internal/logger"
	"github.com/ppiankov/tautohetohe/internal/model"
	"github.com/ppiankov/tautohetohe/internal/patterns"
	"github.com/ppiankov/tautohetohe/internal/score"
)

// Pipeline orchestrates extraction of one volume at a time. It holds no
// per-volume state, so one Pipeline may serve several workers.
type Pipeline struct {
	library    *patterns.Library
	classifier lang.Classifier
	throttle   *logger.Throttle
	config     *model.Config
	log        *logger.Logger
}

// NewPipeline creates a pipeline around classifier
func NewPipeline(cfg *model.Config, classifier lang.Classifier, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		library:    patterns.NewLibrary(cfg.Extract.MatchTimeout),
		classifier: classifier,
		throttle:   logger.NewThrottle(0.2, 3),
		config:     cfg,
		log:        log,
	}
}

// VolumeResult contains everything extracted from one volume
type VolumeResult struct {
	RunID      string
	Volume     model.Volume
	Era        patterns.Era
	Days       []model.DayRecord
	Utterances []model.UtteranceRecord
	Stats      score.VolumeStats
	Duration   time.Duration
}

func (r *VolumeResult) add(days []extract.DayResult) {
	for _, d := range days {
		r.Utterances = append(r.Utterances, d.Utterances...)
		if d.HasRecord {
			r.Days = append(r.Days, d.Record)
		}
		r.Stats.AddDay(d.Totals, d.HasRecord, len(d.Utterances), d.Rejected)
	}
}

// ProcessFile opens the volume's page file and processes it
func (p *Pipeline) ProcessFile(ctx context.Context, vf model.VolumeFile) (*VolumeResult, error) {
	f, err := os.Open(vf.Path)
	if err != nil {
		return nil, fmt.Errorf("open pages: %w", err)
	}
	defer func() { _ = f.Close() }()

	return p.ProcessVolume(ctx, vf.Volume, f)
}

// ProcessVolume runs the full extraction over a page CSV stream. A malformed
// page row aborts the volume with an error wrapping model.ErrMalformedPage.
func (p *Pipeline) ProcessVolume(ctx context.Context, vol model.Volume, pages io.Reader) (*VolumeResult, error) {
	start := time.Now()
	set := p.library.ForVolume(vol.Name)
	timeouts := set.Timeouts()

	result := &VolumeResult{
		RunID:  uuid.NewString(),
		Volume: vol,
		Era:    set.Era,
	}
	log := p.log.With().
		Str("run_id", result.RunID).
		Str("volume", vol.Name).
		Str("era", set.Era.String()).
		Logger()

	// 1. Open the page stream
	reader, err := NewPageReader(pages)
	if err != nil {
		return nil, fmt.Errorf("volume %s: %w", vol.Name, err)
	}

	// 2. Stream pages through the extractor
	classifier := lang.NewSafe(p.classifier, &log, p.throttle, vol.Name)
	ex := extract.NewExtractor(vol, set, classifier, p.config.Extract, &log)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("volume %s: %w", vol.Name, err)
		}
		if !Accept(page) {
			continue
		}

		result.Stats.Pages++
		result.add(ex.AddPage(page))
	}

	// 3. Close the last day
	result.add(ex.Finish())
	result.Duration = time.Since(start)

	if n := set.Timeouts() - timeouts; n > 0 {
		log.Warn().Int64("timeouts", n).Msg("Pattern matches abandoned on timeout")
	}
	log.Info().
		Int("pages", result.Stats.Pages).
		Int("days", result.Stats.Days).
		Int("day_records", result.Stats.DayRecords).
		Int("utterances", result.Stats.Utterances).
		Int("rejected", result.Stats.Rejected).
		Float64("percent", result.Stats.Percent()).
		Dur("took", result.Duration).
		Msg("Volume extracted")

	return result, nil
}
