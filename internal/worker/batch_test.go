package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/tautohetohe/internal/model"
	"github.com/ppiankov/tautohetohe/internal/pipeline"
)

// mockExtractor implements Extractor
type mockExtractor struct {
	failOn string
}

func (m *mockExtractor) ProcessFile(ctx context.Context, vf model.VolumeFile) (*pipeline.VolumeResult, error) {
	time.Sleep(5 * time.Millisecond) // Simulate work
	if vf.Volume.Name == m.failOn {
		return nil, model.ErrMalformedPage
	}
	return &pipeline.VolumeResult{
		Volume: vf.Volume,
		Days:   []model.DayRecord{{Volume: vf.Volume.Name}},
	}, nil
}

// recorder implements Sink and Marker
type recorder struct {
	mu        sync.Mutex
	written   []string
	processed []string
	sinkErr   error
}

func (r *recorder) WriteVolume(ctx context.Context, res *pipeline.VolumeResult) error {
	if r.sinkErr != nil {
		return r.sinkErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written = append(r.written, res.Volume.Name)
	return nil
}

func (r *recorder) MarkProcessed(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, name)
	return nil
}

func files(names ...string) []model.VolumeFile {
	out := make([]model.VolumeFile, 0, len(names))
	for _, n := range names {
		out = append(out, model.VolumeFile{Volume: model.Volume{Name: n}, Path: n + ".csv"})
	}
	return out
}

func TestBatchProcessor_ProcessVolumes(t *testing.T) {
	rec := &recorder{}
	processor := NewBatchProcessor(&mockExtractor{}, rec, rec, 2, nil)

	outcomes := processor.ProcessVolumes(context.Background(), files("1", "2", "3"))

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Index != i {
			t.Errorf("expected outcomes in input order, got index %d at %d", o.Index, i)
		}
		if o.Error != nil {
			t.Errorf("unexpected error for %s: %v", o.Volume.Name, o.Error)
		}
		if o.Result == nil {
			t.Errorf("expected result for %s", o.Volume.Name)
		}
	}
	if len(rec.written) != 3 || len(rec.processed) != 3 {
		t.Errorf("expected 3 writes and 3 marks, got %v and %v", rec.written, rec.processed)
	}
}

func TestBatchProcessor_FailedVolumeNotMarked(t *testing.T) {
	rec := &recorder{}
	processor := NewBatchProcessor(&mockExtractor{failOn: "2"}, rec, rec, 2, nil)

	outcomes := processor.ProcessVolumes(context.Background(), files("1", "2"))

	if outcomes[1].Error == nil || !errors.Is(outcomes[1].Error, model.ErrMalformedPage) {
		t.Errorf("expected malformed page error, got %v", outcomes[1].Error)
	}
	if len(rec.processed) != 1 || rec.processed[0] != "1" {
		t.Errorf("expected only volume 1 marked, got %v", rec.processed)
	}
}

func TestBatchProcessor_SinkErrorNotMarked(t *testing.T) {
	rec := &recorder{sinkErr: errors.New("disk full")}
	processor := NewBatchProcessor(&mockExtractor{}, rec, rec, 1, nil)

	outcomes := processor.ProcessVolumes(context.Background(), files("1"))

	if outcomes[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if len(rec.processed) != 0 {
		t.Errorf("expected no volume marked, got %v", rec.processed)
	}
}

func TestBatchProcessor_NilMarker(t *testing.T) {
	rec := &recorder{}
	processor := NewBatchProcessor(&mockExtractor{}, rec, nil, 1, nil)

	outcomes := processor.ProcessVolumes(context.Background(), files("1"))
	if outcomes[0].Error != nil {
		t.Errorf("unexpected error: %v", outcomes[0].Error)
	}
	if len(rec.written) != 1 {
		t.Errorf("expected 1 write, got %d", len(rec.written))
	}
}

func TestBatchProcessor_ProcessVolumes_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockExtractor{}, &recorder{}, nil, 2, nil)

	outcomes := processor.ProcessVolumes(context.Background(), nil)
	if len(outcomes) != 0 {
		t.Errorf("expected 0 outcomes, got %d", len(outcomes))
	}
}

func TestBatchProcessor_CancelledBatchReportsEveryVolume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	processor := NewBatchProcessor(&mockExtractor{}, rec, rec, 1, nil)

	outcomes := processor.ProcessVolumes(ctx, files("1", "2", "3", "4", "5", "6"))
	if len(outcomes) != 6 {
		t.Fatalf("expected 6 outcomes, got %d", len(outcomes))
	}

	skipped := 0
	for i, o := range outcomes {
		if o.Index != i || o.Volume.Name != files("1", "2", "3", "4", "5", "6")[i].Volume.Name {
			t.Errorf("unexpected outcome %+v at %d", o, i)
		}
		if o.Result != nil {
			continue
		}
		skipped++
		if !errors.Is(o.Error, ErrNotProcessed) || !errors.Is(o.Error, context.Canceled) {
			t.Errorf("expected not processed error for %s, got %v", o.Volume.Name, o.Error)
		}
	}
	if skipped+len(rec.written) != 6 {
		t.Errorf("expected every volume written or skipped, got %d skipped and %v written", skipped, rec.written)
	}
}

func TestNotProcessed_WithoutCancel(t *testing.T) {
	err := notProcessed(context.Background())
	if !errors.Is(err, ErrNotProcessed) || errors.Is(err, context.Canceled) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestVolumeOutcome_GetError(t *testing.T) {
	o1 := &VolumeOutcome{Volume: model.Volume{Name: "1"}}
	if o1.GetError() != nil {
		t.Errorf("expected nil error, got %v", o1.GetError())
	}

	expected := errors.New("extract failed")
	o2 := &VolumeOutcome{Volume: model.Volume{Name: "1"}, Error: expected}
	if o2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, o2.GetError())
	}
}
