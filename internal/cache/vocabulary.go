package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const vocabularyKey = "feedbackinsights:labels:names"

// NameLister loads the full label vocabulary from storage.
type NameLister interface {
	ListLabelNames(ctx context.Context) ([]string, error)
}

// Vocabulary caches the label name snapshot handed to the zero-shot model.
// Cache errors degrade to a direct storage read.
type Vocabulary struct {
	source NameLister
	store  Store
	ttl    time.Duration
	logger *zap.Logger

	// generation moves on every Invalidate; a load that straddles one is
	// not written back.
	generation atomic.Uint64
}

// NewVocabulary wraps source. A nil store disables caching.
func NewVocabulary(source NameLister, store Store, ttl time.Duration, logger *zap.Logger) *Vocabulary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vocabulary{source: source, store: store, ttl: ttl, logger: logger}
}

func (v *Vocabulary) Names(ctx context.Context) ([]string, error) {
	if v.store == nil {
		return v.source.ListLabelNames(ctx)
	}
	raw, found, err := v.store.Get(ctx, vocabularyKey)
	if err != nil {
		v.logger.Warn("vocabulary cache get failed", zap.Error(err))
	} else if found {
		var names []string
		if err := json.Unmarshal(raw, &names); err == nil {
			return names, nil
		}
		v.logger.Warn("vocabulary cache entry unreadable, reloading")
	}

	gen := v.generation.Load()
	names, err := v.source.ListLabelNames(ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	if v.generation.Load() != gen {
		return names, nil
	}
	if b, err := json.Marshal(names); err == nil {
		if err := v.store.Set(ctx, vocabularyKey, b, v.ttl); err != nil {
			v.logger.Warn("vocabulary cache set failed", zap.Error(err))
		}
	}
	if v.generation.Load() != gen {
		v.drop(ctx)
	}
	return names, nil
}

// Invalidate drops the cached snapshot after the vocabulary grows.
func (v *Vocabulary) Invalidate(ctx context.Context) {
	if v.store == nil {
		return
	}
	v.generation.Add(1)
	v.drop(ctx)
}

func (v *Vocabulary) drop(ctx context.Context) {
	if err := v.store.Delete(ctx, vocabularyKey); err != nil {
		v.logger.Warn("vocabulary cache invalidate failed", zap.Error(err))
	}
}
