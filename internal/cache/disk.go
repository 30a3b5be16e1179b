package cache

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Journal persists verdicts between runs as one append-only JSON-lines file
// per classifier. A namespace is read into memory on its first lookup; lines
// older than the TTL, and a torn last line, are skipped.
type Journal struct {
	dir string
	ttl time.Duration

	mu     sync.Mutex
	loaded map[string]map[string]Verdict
	torn   map[string]bool // journal does not end in a newline
}

type journalLine struct {
	Key     string  `json:"key"`
	Stored  int64   `json:"stored"`
	Verdict Verdict `json:"verdict"`
}

// NewJournal creates a journal under dir. ttl <= 0 keeps entries forever.
func NewJournal(dir string, ttl time.Duration) *Journal {
	return &Journal{
		dir:    dir,
		ttl:    ttl,
		loaded: make(map[string]map[string]Verdict),
		torn:   make(map[string]bool),
	}
}

// Lookup implements Store
func (j *Journal) Lookup(classifier, text string) (Verdict, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.namespace(classifier)
	if err != nil {
		return Verdict{}, false
	}
	v, ok := entries[Key(classifier, text)]
	return v, ok
}

// Remember implements Store
func (j *Journal) Remember(classifier, text string, v Verdict) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.namespace(classifier)
	if err != nil {
		return err
	}
	key := Key(classifier, text)
	if old, ok := entries[key]; ok && old == v {
		return nil
	}

	line, err := json.Marshal(journalLine{Key: key, Stored: time.Now().Unix(), Verdict: v})
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}
	if err := os.MkdirAll(j.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	f, err := os.OpenFile(j.path(classifier), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	record := append(line, '\n')
	if j.torn[classifier] {
		record = append([]byte{'\n'}, record...)
	}
	if _, err := f.Write(record); err != nil {
		_ = f.Close()
		return fmt.Errorf("append journal: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}

	j.torn[classifier] = false
	entries[key] = v
	return nil
}

// namespace returns the verdicts of one classifier, reading its journal on
// first use. Callers hold j.mu.
func (j *Journal) namespace(classifier string) (map[string]Verdict, error) {
	if entries, ok := j.loaded[classifier]; ok {
		return entries, nil
	}

	entries := make(map[string]Verdict)
	f, err := os.Open(j.path(classifier))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		j.loaded[classifier] = entries
		return entries, nil
	case err != nil:
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = f.Close() }()

	var cutoff int64
	if j.ttl > 0 {
		cutoff = time.Now().Add(-j.ttl).Unix()
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line journalLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil || line.Key == "" {
			continue
		}
		if cutoff > 0 && line.Stored < cutoff {
			continue
		}
		entries[line.Key] = line.Verdict
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	j.torn[classifier] = endsTorn(f)

	j.loaded[classifier] = entries
	return entries, nil
}

func (j *Journal) path(classifier string) string {
	return filepath.Join(j.dir, classifier+".jsonl")
}

// endsTorn reports whether f is non-empty and lacks a final newline
func endsTorn(f *os.File) bool {
	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return false
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false
	}
	return last[0] != '\n'
}
