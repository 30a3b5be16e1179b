package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/tautohetohe/internal/index"
	"github.com/ppiankov/tautohetohe/internal/logger"
	"github.com/ppiankov/tautohetohe/internal/model"
)

func writeCSV(t *testing.T, path string, rows ...[]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

// testWorkspace lays out an index with two volumes: 200 extracts cleanly,
// 201 has a page row with no text column
func testWorkspace(t *testing.T) *model.Config {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "1854-1987")
	if err := os.MkdirAll(input, 0755); err != nil {
		t.Fatal(err)
	}

	cfg := model.DefaultConfig()
	cfg.Paths.InputDir = input
	cfg.Paths.OutputDir = filepath.Join(dir, "processed")
	cfg.Paths.IndexFile = filepath.Join(dir, "hathivolumeURLs.csv")
	cfg.Paths.DayIndexFile = filepath.Join(dir, "hansardrāindex.csv")
	cfg.Paths.UtteranceFile = filepath.Join(dir, "hansardreomāori.csv")
	cfg.Classifier.Cache = false
	cfg.Concurrency.Workers = 2

	writeCSV(t, cfg.Paths.IndexFile,
		model.VolumeIndexFields,
		[]string{"2018-01-01", "https://example.org/v/200", "200", "1923", "1st", "True", ""},
		[]string{"2018-01-01", "https://example.org/v/201", "201", "1923", "1st", "True", ""},
	)

	reo := strings.TrimSpace(strings.Repeat("Ka haere ahau ki te kainga. ", 10))
	writeCSV(t, filepath.Join(input, "200.csv"),
		[]string{"url", "page", "text", "retrieved"},
		[]string{"https://example.org/p/2", "2", "Tuesday, 5th June, 1923\nMr. TAIAROA.—" + reo + "\n", "2018-01-02"},
	)
	writeCSV(t, filepath.Join(input, "201.csv"),
		[]string{"url", "page", "text", "retrieved"},
		[]string{"https://example.org/p/2", "2"},
	)
	return cfg
}

func TestRunBatch(t *testing.T) {
	cfg := testWorkspace(t)
	var out bytes.Buffer

	summary, err := runBatch(context.Background(), cfg, logger.Nop(), &out)
	if err != nil {
		t.Fatalf("runBatch failed: %v", err)
	}

	if summary.Total != 2 || summary.Succeeded != 1 || summary.Failed != 1 {
		t.Errorf("Unexpected summary %+v", summary)
	}
	if summary.Utterances != 1 || summary.DayRecords != 1 {
		t.Errorf("Expected 1 utterance and 1 day record, got %+v", summary)
	}
	if !strings.Contains(out.String(), "✗ 201") {
		t.Errorf("Expected the failed volume to be reported, got:\n%s", out.String())
	}

	// only the successful volume is marked processed
	files, err := index.New(cfg.Paths.IndexFile).Eligible(cfg.Paths.InputDir)
	if err != nil {
		t.Fatalf("Eligible failed: %v", err)
	}
	if len(files) != 1 || files[0].Volume.Name != "201" {
		t.Errorf("Expected only 201 left to process, got %+v", files)
	}

	for _, name := range []string{"200rāindex.csv", "200reomāori.csv"} {
		if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, name)); err != nil {
			t.Errorf("Expected output file %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "201rāindex.csv")); err == nil {
		t.Error("Expected no output for the failed volume")
	}
}

func TestRunBatch_SecondRunSkipsProcessed(t *testing.T) {
	cfg := testWorkspace(t)
	ctx := context.Background()

	if _, err := runBatch(ctx, cfg, logger.Nop(), &bytes.Buffer{}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	summary, err := runBatch(ctx, cfg, logger.Nop(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if summary.Total != 1 || summary.Failed != 1 {
		t.Errorf("Expected only the failed volume to be retried, got %+v", summary)
	}
}

func TestRunBatch_Interrupted(t *testing.T) {
	cfg := testWorkspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := runBatch(ctx, cfg, logger.Nop(), &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected an interrupted run error, got %v", err)
	}
	if summary == nil || summary.Succeeded+summary.Failed != summary.Total {
		t.Errorf("Expected an outcome for every volume, got %+v", summary)
	}
}

func TestRunVolume(t *testing.T) {
	cfg := testWorkspace(t)
	cfg.Storage.Driver = model.StorageSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "hansard.db")

	var out bytes.Buffer
	vf := model.VolumeFile{
		Volume: model.Volume{Name: "200", Period: "1923"},
		Path:   filepath.Join(cfg.Paths.InputDir, "200.csv"),
	}
	if err := runVolume(context.Background(), cfg, logger.Nop(), vf, &out); err != nil {
		t.Fatalf("runVolume failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ 200 (era A)") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}

	// the index is left alone
	files, err := index.New(cfg.Paths.IndexFile).Eligible(cfg.Paths.InputDir)
	if err != nil {
		t.Fatalf("Eligible failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected both volumes still eligible, got %d", len(files))
	}
}

func TestRunVolume_Malformed(t *testing.T) {
	cfg := testWorkspace(t)
	vf := model.VolumeFile{
		Volume: model.Volume{Name: "201"},
		Path:   filepath.Join(cfg.Paths.InputDir, "201.csv"),
	}
	if err := runVolume(context.Background(), cfg, logger.Nop(), vf, &bytes.Buffer{}); err == nil {
		t.Error("Expected an error for a malformed page file")
	}
}
