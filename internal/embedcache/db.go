package embedcache

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/notewell/notewell/internal/ai"
	"github.com/notewell/notewell/internal/model"
)

type cacheStore interface {
	Lookup(ctx context.Context, modelName, taskType, contentHash string) ([]float32, bool, error)
	Store(ctx context.Context, entry *model.CachedEmbedding) error
}

// DBEmbedder persists embeddings so reindexing unchanged text across
// restarts does not hit the upstream provider again. Cache failures are
// logged and ignored; the embedder itself stays usable.
type DBEmbedder struct {
	next  ai.IEmbedder
	store cacheStore
}

func NewDBEmbedder(next ai.IEmbedder, store cacheStore) *DBEmbedder {
	return &DBEmbedder{next: next, store: store}
}

func (e *DBEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	key := cacheKey(e.next.ModelName(), taskType, text)
	vec, ok, err := e.store.Lookup(ctx, e.next.ModelName(), taskType, key)
	if err != nil {
		logutil.GetLogger(ctx).Warn("read embedding cache failed", zap.Error(err))
	} else if ok {
		return vec, nil
	}
	vec, err = e.next.Embed(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	saveErr := e.store.Store(ctx, &model.CachedEmbedding{
		ModelName:   e.next.ModelName(),
		TaskType:    taskType,
		ContentHash: key,
		Embedding:   vec,
		Ctime:       time.Now().UnixMilli(),
	})
	if saveErr != nil {
		logutil.GetLogger(ctx).Warn("write embedding cache failed", zap.Error(saveErr))
	}
	return vec, nil
}

func (e *DBEmbedder) ModelName() string {
	return e.next.ModelName()
}
