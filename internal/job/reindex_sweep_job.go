package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/notewell/notewell/internal/model"
)

type staleLister interface {
	ListStale(ctx context.Context, limit int) ([]model.Document, error)
}

type reindexEnqueuer interface {
	EnqueueReindex(documentID string, userID string)
}

// ReindexSweepJob re-enqueues documents whose content changed after their
// last indexing pass, picking up work lost to crashes or dropped tasks.
type ReindexSweepJob struct {
	docs  staleLister
	queue reindexEnqueuer
	limit int
}

func NewReindexSweepJob(docs staleLister, queue reindexEnqueuer, limit int) *ReindexSweepJob {
	if limit <= 0 {
		limit = 200
	}
	return &ReindexSweepJob{docs: docs, queue: queue, limit: limit}
}

func (j *ReindexSweepJob) Name() string {
	return "reindex_sweep"
}

func (j *ReindexSweepJob) Run(ctx context.Context) error {
	docs, err := j.docs.ListStale(ctx, j.limit)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		j.queue.EnqueueReindex(doc.ID, doc.UserID)
	}
	if len(docs) > 0 {
		logutil.GetLogger(ctx).Info("reindex sweep enqueued documents", zap.Int("count", len(docs)))
	}
	return nil
}
