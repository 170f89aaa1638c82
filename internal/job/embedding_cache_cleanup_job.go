package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type cachePruner interface {
	PruneBefore(ctx context.Context, cutoff int64) (int64, error)
}

// EmbeddingCacheCleanupJob removes persisted embedding cache rows older
// than the retention window.
type EmbeddingCacheCleanupJob struct {
	cache     cachePruner
	retention time.Duration
}

func NewEmbeddingCacheCleanupJob(cache cachePruner, retention time.Duration) *EmbeddingCacheCleanupJob {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &EmbeddingCacheCleanupJob{cache: cache, retention: retention}
}

func (j *EmbeddingCacheCleanupJob) Name() string {
	return "embedding_cache_cleanup"
}

func (j *EmbeddingCacheCleanupJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention).UnixMilli()
	removed, err := j.cache.PruneBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("embedding cache pruned", zap.Int64("removed", removed))
	}
	return nil
}
