package extract

import (
	"strings"

	"github.com/ppiankov/tautohetohe/internal/lang"
	"github.com/ppiankov/tautohetohe/internal/model"
	"github.com/ppiankov/tautohetohe/internal/patterns"
)

// Segmenter cuts a volume's page stream into day segments at date headers.
//
// Pages are joined into one running text on line breaks. The last line of a
// page is held back until the next page arrives, so a date header that ends
// one page is matched together with the line break that starts the next and
// segment boundaries fall at text positions regardless of page breaks.
type Segmenter struct {
	set      *patterns.Set
	perPage  bool
	stripped bool
	current  model.DaySegment
	pieces   []string

	// tail is text carried over from the previous page, tailPage its source
	tail     string
	tailPage model.Page
}

// NewSegmenter starts the stream for vol. Text before the first date header
// is attributed to the volume's period, URL and retrieval time. headerMode is
// model.HeaderModeVolume or model.HeaderModePage.
func NewSegmenter(vol model.Volume, set *patterns.Set, headerMode string) *Segmenter {
	return &Segmenter{
		set:     set,
		perPage: headerMode == model.HeaderModePage,
		current: model.DaySegment{
			Date:      vol.Period,
			URL:       vol.URL,
			Retrieved: vol.Retrieved,
		},
	}
}

// Add consumes one page and returns the segments it closed
func (s *Segmenter) Add(page model.Page) []model.DaySegment {
	text := "\n" + page.Text
	if s.perPage || !s.stripped {
		text = s.stripHeader(text)
		s.stripped = true
	}
	return s.scan(s.tail+text, page, false)
}

// Finish closes the last open segment at the end of the volume
func (s *Segmenter) Finish() []model.DaySegment {
	closed := s.scan(s.tail+"\n", s.tailPage, true)
	seg, ok := s.flush(true)
	s.current = model.DaySegment{}
	if ok {
		closed = append(closed, seg)
	}
	return closed
}

// scan splits text at date headers. Unless final, a header that reaches the
// end of text and the unterminated last line are kept as the new tail.
func (s *Segmenter) scan(text string, page model.Page, final bool) []model.DaySegment {
	tailLen := len(s.tail)
	tailPage := s.tailPage
	s.tail = ""

	var closed []model.DaySegment
	for {
		m, ok := s.set.Date.Find(text)
		if ok && (final || m.End < len(text)) {
			s.append(text[:m.Start])
			if seg, ok := s.flush(false); ok {
				closed = append(closed, seg)
			}
			src := page
			if m.Start < tailLen {
				src = tailPage
			}
			s.current = model.DaySegment{
				Date:      lang.Normalize(m.Text),
				URL:       src.URL,
				Retrieved: src.Retrieved,
				Dated:     true,
			}
			text = text[m.End:]
			tailLen -= m.End
			continue
		}

		if final {
			s.append(text)
			return closed
		}

		cut := strings.LastIndex(text, "\n")
		if ok {
			cut = strings.LastIndex(text[:m.Start+1], "\n")
		}
		if cut < 0 {
			cut = 0
		}
		s.append(text[:cut])
		if tail := strings.TrimRight(text[cut:], " \t\r\n"); strings.TrimSpace(tail) != "" {
			s.tail = tail
			s.tailPage = page
			if cut < tailLen {
				s.tailPage = tailPage
			}
		}
		return closed
	}
}

// stripHeader removes running-head boilerplate from the top of a page, up
// to the first date header on it
func (s *Segmenter) stripHeader(text string) string {
	bound := len(text)
	if m, ok := s.set.Date.Find(text); ok {
		bound = m.Start
	}
	if bound <= 1 {
		return text
	}
	h, ok := s.set.Header.Match(text[1:bound])
	if !ok || h.End == 0 {
		return text
	}
	return "\n" + text[1+h.End:]
}

func (s *Segmenter) append(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.pieces = append(s.pieces, text)
}

// flush returns the current segment and resets the text buffer. An undated
// segment without text is not reported.
func (s *Segmenter) flush(end bool) (model.DaySegment, bool) {
	seg := s.current
	seg.Text = strings.Join(s.pieces, "\n")
	seg.ClosedByVolumeEnd = end
	s.pieces = s.pieces[:0]
	return seg, seg.Dated || seg.Text != ""
}
