// Package cache memoises classifier verdicts for normalised text fragments.
// Hansard repeats procedural sentences across thousands of pages, so most
// fragments are classified once per corpus.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Verdict is the stored classification of one fragment
type Verdict struct {
	Target    int     `json:"reo"`
	Ambiguous int     `json:"ambiguous"`
	Other     int     `json:"other"`
	Percent   float64 `json:"percent"`
	IsTarget  bool    `json:"is_target"`
}

// Store remembers verdicts per classifier. Implementations are safe for
// concurrent use by the volume workers.
type Store interface {
	Lookup(classifier, text string) (Verdict, bool)
	Remember(classifier, text string, v Verdict) error
}

// Key derives the storage key of a fragment within a classifier namespace
func Key(namespace, text string) string {
	hash := sha256.Sum256([]byte(text))
	return "tautohetohe:" + namespace + ":" + hex.EncodeToString(hash[:])
}
