// Package index reads and updates the volume index CSV that lists every
// volume, where it came from and whether it has been processed.
package index

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ppiankov/tautohetohe/internal/model"
)

const processedValue = "True"

// Index is the on-disk volume index. MarkProcessed serialises its
// read-modify-write cycles, so one Index may be shared by all workers.
type Index struct {
	path string
	mu   sync.Mutex
}

// New returns an Index backed by the CSV file at path
func New(path string) *Index {
	return &Index{path: path}
}

// Path returns the index file path
func (ix *Index) Path() string { return ix.path }

// table is the raw index content. Unknown columns survive a rewrite.
type table struct {
	header []string
	rows   []map[string]string
}

func (t *table) volume(row map[string]string) model.Volume {
	return model.Volume{
		Name:      row["name"],
		URL:       row["url"],
		Retrieved: row["retrieved"],
		Period:    row["period"],
		Session:   row["session"],
		Processed: isProcessed(row["processed"]),
	}
}

// isProcessed treats any non-empty value other than an explicit false as
// processed
func isProcessed(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "0", "no":
		return false
	}
	return true
}

// Volumes returns every volume in index order
func (ix *Index) Volumes() ([]model.Volume, error) {
	t, err := ix.read()
	if err != nil {
		return nil, err
	}
	out := make([]model.Volume, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, t.volume(row))
	}
	return out, nil
}

// Eligible returns the unprocessed volumes that have a page file
// <inputDir>/<name>.csv, in index order
func (ix *Index) Eligible(inputDir string) ([]model.VolumeFile, error) {
	vols, err := ix.Volumes()
	if err != nil {
		return nil, err
	}

	var out []model.VolumeFile
	for _, v := range vols {
		if v.Processed || v.Name == "" {
			continue
		}
		path := filepath.Join(inputDir, v.Name+".csv")
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, model.VolumeFile{Volume: v, Path: path})
	}
	return out, nil
}

// MarkProcessed sets the processed flag of the named volume
func (ix *Index) MarkProcessed(name string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	t, err := ix.read()
	if err != nil {
		return err
	}

	found := false
	for _, row := range t.rows {
		if row["name"] == name {
			row["processed"] = processedValue
			found = true
		}
	}
	if !found {
		return fmt.Errorf("volume %q not in index", name)
	}

	return ix.write(t)
}

func (ix *Index) read() (*table, error) {
	f, err := os.Open(ix.path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("read index: missing header")
	}

	t := &table{header: records[0]}
	for i, h := range t.header {
		t.header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for _, required := range model.VolumeIndexFields {
		if !contains(t.header, required) {
			t.header = append(t.header, required)
		}
	}

	for _, rec := range records[1:] {
		row := make(map[string]string, len(t.header))
		for i, h := range t.header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// write replaces the index atomically: readers see either the old or the
// new file
func (ix *Index) write(t *table) error {
	tmp, err := os.CreateTemp(filepath.Dir(ix.path), filepath.Base(ix.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	if err := w.Write(t.header); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write index: %w", err)
	}
	for _, row := range t.rows {
		rec := make([]string, len(t.header))
		for i, h := range t.header {
			rec[i] = row[h]
		}
		if err := w.Write(rec); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("write index: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index: %w", err)
	}

	if err := os.Rename(tmp.Name(), ix.path); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
