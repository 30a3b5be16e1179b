package pipeline

import (
	"github.com/ppiankov/tautohetohe/internal/cache"
	"github.com/ppiankov/tautohetohe/internal/lang"
	"github.com/ppiankov/tautohetohe/internal/model"
)

// NewClassifier builds the lexical classifier, memoised in memory (and in a
// disk journal when a cache directory is configured)
func NewClassifier(cfg model.ClassifierConfig) lang.Classifier {
	lexical := lang.NewLexical()
	if !cfg.Cache {
		return lexical
	}

	memory := cache.NewMemory(cfg.MemoryTTL)
	var store cache.Store = memory
	if cfg.DiskDir != "" {
		store = cache.NewTiered(memory, cache.NewJournal(cfg.DiskDir, cfg.DiskTTL))
	}
	return lang.NewCached(lexical, store, "lexical")
}
