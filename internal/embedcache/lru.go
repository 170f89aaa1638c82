package embedcache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/notewell/notewell/internal/ai"
)

// LRUEmbedder is an in-process cache in front of an embedder. Entries
// expire so a reconfigured upstream model cannot serve stale vectors
// forever.
type LRUEmbedder struct {
	next  ai.IEmbedder
	cache *lru.LRU[string, []float32]
}

func NewLRUEmbedder(next ai.IEmbedder, size int, ttl time.Duration) *LRUEmbedder {
	if size <= 0 {
		size = 8192
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LRUEmbedder{
		next:  next,
		cache: lru.NewLRU[string, []float32](size, nil, ttl),
	}
}

func (e *LRUEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	key := cacheKey(e.next.ModelName(), taskType, text)
	if vec, ok := e.cache.Get(key); ok {
		return vec, nil
	}
	vec, err := e.next.Embed(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, vec)
	return vec, nil
}

func (e *LRUEmbedder) ModelName() string {
	return e.next.ModelName()
}
