package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ppiankov/tautohetohe/internal/logger"
	"github.com/ppiankov/tautohetohe/internal/model"
	"github.com/ppiankov/tautohetohe/internal/pipeline"
)

// Extractor extracts the records of one volume file
type Extractor interface {
	ProcessFile(ctx context.Context, vf model.VolumeFile) (*pipeline.VolumeResult, error)
}

// Sink persists a volume's records
type Sink interface {
	WriteVolume(ctx context.Context, res *pipeline.VolumeResult) error
}

// Marker records that a volume has been processed
type Marker interface {
	MarkProcessed(name string) error
}

// VolumeJob extracts, stores and marks one volume
type VolumeJob struct {
	Index     int
	File      model.VolumeFile
	Extractor Extractor
	Sink      Sink
	Marker    Marker // nil leaves the index untouched
}

// Execute executes the volume job. A volume is only marked processed once its
// records have been written.
func (j *VolumeJob) Execute(ctx context.Context) Result {
	outcome := &VolumeOutcome{Index: j.Index, Volume: j.File.Volume}
	start := time.Now()
	defer func() { outcome.Duration = time.Since(start) }()

	res, err := j.Extractor.ProcessFile(ctx, j.File)
	if err != nil {
		outcome.Error = fmt.Errorf("extract: %w", err)
		return outcome
	}
	outcome.Result = res

	if err := j.Sink.WriteVolume(ctx, res); err != nil {
		outcome.Error = fmt.Errorf("write records: %w", err)
		return outcome
	}

	if j.Marker != nil {
		if err := j.Marker.MarkProcessed(j.File.Volume.Name); err != nil {
			outcome.Error = fmt.Errorf("mark processed: %w", err)
			return outcome
		}
	}
	return outcome
}

// VolumeOutcome represents the result of a volume job
type VolumeOutcome struct {
	Index    int
	Volume   model.Volume
	Result   *pipeline.VolumeResult
	Duration time.Duration
	Error    error
}

// GetError returns the error from the volume outcome
func (o *VolumeOutcome) GetError() error {
	return o.Error
}

// BatchProcessor processes multiple volumes concurrently
type BatchProcessor struct {
	extractor   Extractor
	sink        Sink
	marker      Marker
	concurrency int
	log         *logger.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(extractor Extractor, sink Sink, marker Marker, concurrency int, log *logger.Logger) *BatchProcessor {
	if log == nil {
		log = logger.Nop()
	}
	return &BatchProcessor{
		extractor:   extractor,
		sink:        sink,
		marker:      marker,
		concurrency: concurrency,
		log:         log,
	}
}

// ProcessVolumes processes volume files concurrently and returns one outcome
// per file, in input order
func (b *BatchProcessor) ProcessVolumes(ctx context.Context, files []model.VolumeFile) []*VolumeOutcome {
	if len(files) == 0 {
		return []*VolumeOutcome{}
	}

	// Create worker pool
	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Submit jobs
	for i, vf := range files {
		b.log.Info().Str("volume", vf.Volume.Name).Str("file", vf.Path).Msg("Extracting corpus")
		pool.Submit(&VolumeJob{
			Index:     i,
			File:      vf,
			Extractor: b.extractor,
			Sink:      b.sink,
			Marker:    b.marker,
		})
	}

	// Wait for all jobs to complete
	results := pool.Wait()

	outcomes := make([]*VolumeOutcome, 0, len(files))
	seen := make(map[int]bool, len(results))
	for _, result := range results {
		outcome := result.(*VolumeOutcome)
		if outcome.Error != nil {
			b.log.Error().Err(outcome.Error).Str("volume", outcome.Volume.Name).Msg("Volume failed")
		}
		seen[outcome.Index] = true
		outcomes = append(outcomes, outcome)
	}

	// Jobs dropped by a cancelled pool still get an outcome
	for i, vf := range files {
		if seen[i] {
			continue
		}
		outcome := &VolumeOutcome{Index: i, Volume: vf.Volume, Error: notProcessed(ctx)}
		b.log.Warn().Err(outcome.Error).Str("volume", vf.Volume.Name).Msg("Volume skipped")
		outcomes = append(outcomes, outcome)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Index < outcomes[j].Index })

	return outcomes
}

// ErrNotProcessed marks a volume the batch never ran
var ErrNotProcessed = errors.New("volume not processed")

func notProcessed(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotProcessed, err)
	}
	return ErrNotProcessed
}
