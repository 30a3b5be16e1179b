package score

import (
	"github.com/ppiankov/tautohetohe/internal/lang"
	"github.com/ppiankov/tautohetohe/internal/model"
)

// Aggregator turns a day's running word totals into a day record
type Aggregator struct {
	minDayWords int
}

// NewAggregator creates an aggregator that drops days with at most
// minDayWords classified words
func NewAggregator(minDayWords int) *Aggregator {
	return &Aggregator{minDayWords: minDayWords}
}

// Summarise returns the day record for seg. Text before the first date header
// of a volume never produces a record.
func (a *Aggregator) Summarise(volume string, seg model.DaySegment, totals lang.Counts) (model.DayRecord, bool) {
	if !seg.Dated || totals.Total() <= a.minDayWords {
		return model.DayRecord{}, false
	}

	return model.DayRecord{
		URL:        seg.URL,
		Volume:     volume,
		Date:       seg.Date,
		Target:     totals.Target,
		Ambiguous:  totals.Ambiguous,
		Other:      totals.Other,
		Percent:    lang.Percentage(totals),
		Retrieved:  seg.Retrieved,
		Format:     model.FormatOCR,
		Incomplete: seg.ClosedByVolumeEnd,
	}, true
}

// VolumeStats summarises one processed volume
type VolumeStats struct {
	Pages      int
	Days       int
	DayRecords int
	Utterances int
	Rejected   int
	Totals     lang.Counts
}

// AddDay folds one processed day into the summary
func (s *VolumeStats) AddDay(totals lang.Counts, recorded bool, utterances, rejected int) {
	s.Days++
	if recorded {
		s.DayRecords++
	}
	s.Utterances += utterances
	s.Rejected += rejected
	s.Totals.Add(totals)
}

// Percent is the volume-wide target percentage
func (s VolumeStats) Percent() float64 {
	return lang.Percentage(s.Totals)
}
