package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/tautohetohe/internal/lang"
	"github.com/ppiankov/tautohetohe/internal/model"
)

var pageHeader = []string{"url", "page", "text", "retrieved"}

func pagesCSV(header []string, rows ...[]string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(header)
	for _, r := range rows {
		_ = w.Write(r)
	}
	w.Flush()
	return b.String()
}

func testVolume() model.Volume {
	return model.Volume{
		Name:      "200",
		URL:       "https://example.org/vol/200",
		Retrieved: "2018-01-01 00:00:00",
		Period:    "1923",
	}
}

func testPages() string {
	reo := strings.TrimSpace(strings.Repeat("Ka haere ahau ki te kainga. ", 10))
	return pagesCSV(pageHeader,
		[]string{"https://example.org/p/v200c", "0", "COVER PAGE", "2018-01-01"},
		[]string{"https://example.org/p/1", "1", "Title page text", "2018-01-01"},
		[]string{"https://example.org/p/2", "2", "LEGISLATIVE COUNCIL\nTuesday, 5th June, 1923\nMr. TAIAROA.—" + reo + "\n", "2018-01-02"},
		[]string{"https://example.org/p/3", "3", "Ko te mea nui tenei ki a matou katoa.\nWednesday, 6th June, 1923\nThe Council met at noon and the minutes were read.\n", "2018-01-03"},
		[]string{"https://example.org/p/4", "4", "12 &amp; 13", "2018-01-04"},
	)
}

func newTestPipeline() *Pipeline {
	cfg := model.DefaultConfig()
	return NewPipeline(cfg, lang.NewLexical(), nil)
}

func TestProcessVolume(t *testing.T) {
	p := newTestPipeline()

	res, err := p.ProcessVolume(context.Background(), testVolume(), strings.NewReader(testPages()))
	if err != nil {
		t.Fatalf("ProcessVolume failed: %v", err)
	}

	if res.Stats.Pages != 2 {
		t.Errorf("Expected 2 accepted pages, got %d", res.Stats.Pages)
	}
	if res.RunID == "" {
		t.Error("Expected a run id")
	}

	if len(res.Utterances) != 1 {
		t.Fatalf("Expected 1 utterance, got %d: %+v", len(res.Utterances), res.Utterances)
	}
	u := res.Utterances[0]
	if u.Speaker != "Mr. TAIAROA" || u.Sequence != 1 || u.Date != "Tuesday, 5th June, 1923" {
		t.Errorf("Unexpected utterance %+v", u)
	}
	if u.URL != "https://example.org/p/2" {
		t.Errorf("Expected utterance URL of the page holding the date, got %q", u.URL)
	}
	if !strings.HasSuffix(u.Text, "kainga. Ko te mea nui tenei ki a matou katoa.") {
		t.Errorf("Expected the utterance to continue across the page break, got %q", u.Text)
	}

	if len(res.Days) != 1 {
		t.Fatalf("Expected 1 day record, got %d: %+v", len(res.Days), res.Days)
	}
	d := res.Days[0]
	want := model.DayRecord{
		URL:       "https://example.org/p/2",
		Volume:    "200",
		Date:      "Tuesday, 5th June, 1923",
		Target:    68,
		Ambiguous: 1,
		Percent:   98.55,
		Retrieved: "2018-01-02",
		Format:    model.FormatOCR,
	}
	if d != want {
		t.Errorf("Unexpected day record:\n got %+v\nwant %+v", d, want)
	}

	// leading segment, Tuesday and Wednesday
	if res.Stats.Days != 3 {
		t.Errorf("Expected 3 processed segments, got %d", res.Stats.Days)
	}
}

func TestProcessVolume_Idempotent(t *testing.T) {
	p := newTestPipeline()

	first, err := p.ProcessVolume(context.Background(), testVolume(), strings.NewReader(testPages()))
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := newTestPipeline().ProcessVolume(context.Background(), testVolume(), strings.NewReader(testPages()))
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if !reflect.DeepEqual(first.Days, second.Days) {
		t.Error("Day records differ between runs")
	}
	if !reflect.DeepEqual(first.Utterances, second.Utterances) {
		t.Error("Utterance records differ between runs")
	}
}

func TestProcessVolume_Conservation(t *testing.T) {
	p := newTestPipeline()

	res, err := p.ProcessVolume(context.Background(), testVolume(), strings.NewReader(testPages()))
	if err != nil {
		t.Fatalf("ProcessVolume failed: %v", err)
	}

	var recorded lang.Counts
	for _, d := range res.Days {
		recorded.Add(lang.Counts{Target: d.Target, Ambiguous: d.Ambiguous, Other: d.Other})
	}
	// Wednesday's 10 words fall below the threshold, everything else is recorded
	if recorded.Total()+10 != res.Stats.Totals.Total() {
		t.Errorf("Recorded %d words, volume totals %d", recorded.Total(), res.Stats.Totals.Total())
	}
}

func TestProcessVolume_MalformedRow(t *testing.T) {
	p := newTestPipeline()
	pages := pagesCSV(pageHeader,
		[]string{"https://example.org/p/2", "2", "Tuesday, 5th June, 1923\nKa pai.", "2018-01-02"},
		[]string{"https://example.org/p/3", "3"},
	)

	_, err := p.ProcessVolume(context.Background(), testVolume(), strings.NewReader(pages))
	if !errors.Is(err, model.ErrMalformedPage) {
		t.Fatalf("Expected malformed page error, got %v", err)
	}
	var pe *model.PageError
	if !errors.As(err, &pe) || pe.Row != 2 || pe.Field != "text" {
		t.Errorf("Unexpected page error %+v", pe)
	}
}

func TestProcessVolume_Cancelled(t *testing.T) {
	p := newTestPipeline()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.ProcessVolume(ctx, testVolume(), strings.NewReader(testPages())); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
