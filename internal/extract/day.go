package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/tautohetohe/internal/lang"
	"github.com/ppiankov/tautohetohe/internal/logger"
	"github.com/ppiankov/tautohetohe/internal/model"
	"github.com/ppiankov/tautohetohe/internal/patterns"
	"github.com/ppiankov/tautohetohe/internal/score"
	"github.com/ppiankov/tautohetohe/internal/validate"
)

// DayResult is everything one day segment produced
type DayResult struct {
	Segment    model.DaySegment
	Utterances []model.UtteranceRecord
	Record     model.DayRecord
	HasRecord  bool
	Totals     lang.Counts
	Rejected   int
}

// Processor turns day segments of one volume into records
type Processor struct {
	volume           string
	set              *patterns.Set
	classifier       lang.Classifier
	validator        *validate.Validator
	aggregator       *score.Aggregator
	minSentenceChars int
	log              *logger.Logger
}

// NewProcessor creates a processor for the named volume
func NewProcessor(volume string, set *patterns.Set, classifier lang.Classifier, cfg model.ExtractConfig, log *logger.Logger) *Processor {
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{
		volume:           volume,
		set:              set,
		classifier:       classifier,
		validator:        validate.NewValidator(set, classifier, cfg.MinTargetWords, cfg.MaxOtherWords),
		aggregator:       score.NewAggregator(cfg.MinDayWords),
		minSentenceChars: cfg.MinSentenceChars,
		log:              log,
	}
}

// ProcessDay cleans seg, extracts its utterances and summarises the day
func (p *Processor) ProcessDay(seg model.DaySegment) DayResult {
	st := newParseState(seg)
	p.paragraphs(Clean(p.set, seg.Text), st)

	res := DayResult{
		Segment:    seg,
		Utterances: st.Utterances,
		Totals:     st.Totals,
		Rejected:   st.Rejected,
	}
	res.Record, res.HasRecord = p.aggregator.Summarise(p.volume, seg, st.Totals)

	p.log.Debug().
		Str("date", seg.Date).
		Int("utterances", len(res.Utterances)).
		Int("rejected", res.Rejected).
		Int("words", st.Totals.Total()).
		Bool("recorded", res.HasRecord).
		Msg("Day processed")
	return res
}

// paragraphs walks the blank-line separated paragraphs of a cleaned day. The
// buffer survives paragraph ends and is only flushed at day end.
func (p *Processor) paragraphs(text string, st *VolumeParseState) {
	for {
		m, ok := p.set.Paragraph.Find(text)
		if !ok {
			p.paragraph(text, st)
			break
		}
		p.paragraph(text[:m.Start], st)
		text = text[m.End:]
	}
	p.flush(st)
}

// paragraph handles a speaker change at the head of the paragraph, then
// feeds the rest to the sentence accumulator
func (p *Processor) paragraph(text string, st *VolumeParseState) {
	if m, ok := p.set.Speaker.Match(text); ok {
		if name := lang.Normalize(m.Group(1)); name != "" {
			p.flush(st)
			st.Speaker = name
			text = text[m.End:]
		}
	}

	st.seed()
	for text != "" {
		var sentence string
		if m, ok := p.set.Sentence.Find(text); ok {
			sentence, text = text[:m.Start+1], text[m.End:]
		} else {
			sentence, text = text, ""
		}
		p.sentence(sentence, st)
	}
}

// sentence classifies one sentence and applies the matching transition
func (p *Processor) sentence(sentence string, st *VolumeParseState) {
	if strings.TrimSpace(sentence) == "" {
		return
	}

	r, err := p.classifier.Classify(sentence)
	if err != nil {
		r = lang.Result{}
	}
	class := classOther
	if r.IsTarget {
		class = classTarget
	}

	t := transitions[st.run][class]
	if t.flush {
		p.flush(st)
	}
	if t.begin {
		st.Sequence++
	}
	switch {
	case t.start:
		st.Buffer = []string{lang.Normalize(sentence)}
	case t.append:
		st.Buffer = append(st.Buffer, lang.Normalize(sentence))
	}
	st.run = t.next

	// Non-target sentences still count toward the day's statistics
	if class == classOther && utf8.RuneCountInString(sentence) > p.minSentenceChars {
		st.Totals.Add(r.Counts)
	}
}

// flush validates the open buffer and emits it as an utterance when accepted
func (p *Processor) flush(st *VolumeParseState) {
	if len(st.Buffer) == 0 {
		return
	}
	text := strings.Join(st.Buffer, " ")
	st.Buffer = nil

	v := p.validator.Validate(text)
	if v.Classified {
		st.Totals.Add(v.Result.Counts)
	}
	if !v.Accepted {
		st.Rejected++
		p.log.Trace().
			Str("date", st.Day.Date).
			Str("reason", string(v.Reason)).
			Str("text", v.Text).
			Msg("Utterance rejected")
		return
	}

	st.Utterances = append(st.Utterances, model.UtteranceRecord{
		URL:       st.Day.URL,
		Volume:    p.volume,
		Date:      st.Day.Date,
		Sequence:  st.Sequence,
		Speaker:   st.Speaker,
		Target:    v.Result.Target,
		Ambiguous: v.Result.Ambiguous,
		Other:     v.Result.Other,
		Percent:   v.Result.Percent,
		Text:      v.Text,
	})
}
