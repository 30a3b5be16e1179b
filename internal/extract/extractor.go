// Package extract segments a volume's OCR page stream into sitting days and
// pulls reo Māori utterances out of each day.
package extract

import (
	"github.com/ppiankov/tautohetohe/internal/lang"
	"github.com/ppiankov/tautohetohe/internal/logger"
	"github.com/ppiankov/tautohetohe/internal/model"
	"github.com/ppiankov/tautohetohe/internal/patterns"
)

// Extractor runs the whole extraction for one volume. It is not safe for
// concurrent use; create one per volume.
type Extractor struct {
	segmenter *Segmenter
	processor *Processor
}

// NewExtractor creates an extractor for vol using the era's recognizers
func NewExtractor(vol model.Volume, set *patterns.Set, classifier lang.Classifier, cfg model.ExtractConfig, log *logger.Logger) *Extractor {
	return &Extractor{
		segmenter: NewSegmenter(vol, set, cfg.HeaderMode),
		processor: NewProcessor(vol.Name, set, classifier, cfg, log),
	}
}

// AddPage feeds one page and returns the days it closed
func (e *Extractor) AddPage(page model.Page) []DayResult {
	return e.process(e.segmenter.Add(page))
}

// Finish processes the day left open at the end of the volume
func (e *Extractor) Finish() []DayResult {
	return e.process(e.segmenter.Finish())
}

func (e *Extractor) process(segments []model.DaySegment) []DayResult {
	if len(segments) == 0 {
		return nil
	}
	results := make([]DayResult, 0, len(segments))
	for _, seg := range segments {
		results = append(results, e.processor.ProcessDay(seg))
	}
	return results
}
