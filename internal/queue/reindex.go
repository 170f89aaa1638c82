package queue

import (
	"context"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Task identifies one reindex request. Payloads carry ids only; workers
// always read the latest document state, which keeps retries idempotent.
type Task struct {
	DocumentID string
	UserID     string
}

// Handler performs the actual reindex. Errors are logged, not retried
// here; the periodic sweep job picks up anything that stayed stale.
type Handler func(ctx context.Context, task Task) error

// ReindexQueue is an in-process task queue with per-document collapsing:
// while a document is queued or being processed, further requests for it
// fold into a single follow-up run instead of piling up.
type ReindexQueue struct {
	handler Handler
	tasks   chan Task

	mu       sync.Mutex
	queued   map[string]bool
	running  map[string]bool
	followUp map[string]Task
	closed   bool

	wg  sync.WaitGroup
	ctx context.Context
}

func NewReindexQueue(handler Handler, buffer int) *ReindexQueue {
	if buffer <= 0 {
		buffer = 256
	}
	return &ReindexQueue{
		handler:  handler,
		tasks:    make(chan Task, buffer),
		queued:   make(map[string]bool),
		running:  make(map[string]bool),
		followUp: make(map[string]Task),
		ctx:      context.Background(),
	}
}

func (q *ReindexQueue) Start(ctx context.Context, workers int) {
	if ctx != nil {
		q.ctx = ctx
	}
	if workers <= 0 {
		workers = 2
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

// EnqueueReindex schedules a reindex for the document. Fire and forget: a
// full queue or a closed queue drops the task, which the sweep job later
// repairs.
func (q *ReindexQueue) EnqueueReindex(docID, userID string) {
	q.Enqueue(Task{DocumentID: docID, UserID: userID})
}

func (q *ReindexQueue) Enqueue(task Task) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	if q.running[task.DocumentID] {
		q.followUp[task.DocumentID] = task
		q.mu.Unlock()
		return
	}
	if q.queued[task.DocumentID] {
		q.mu.Unlock()
		return
	}
	q.queued[task.DocumentID] = true
	q.mu.Unlock()

	select {
	case q.tasks <- task:
	default:
		q.mu.Lock()
		delete(q.queued, task.DocumentID)
		q.mu.Unlock()
		logutil.GetLogger(context.Background()).Warn("reindex queue full, dropping task",
			zap.String("doc_id", task.DocumentID))
	}
}

// Stop closes the queue and waits for in-flight work to finish.
func (q *ReindexQueue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	close(q.tasks)
	q.wg.Wait()
}

func (q *ReindexQueue) worker() {
	defer q.wg.Done()
	for task := range q.tasks {
		q.mu.Lock()
		delete(q.queued, task.DocumentID)
		if q.running[task.DocumentID] {
			// another worker holds this document; fold into its follow-up
			q.followUp[task.DocumentID] = task
			q.mu.Unlock()
			continue
		}
		q.running[task.DocumentID] = true
		q.mu.Unlock()

		q.run(task)

		q.mu.Lock()
		delete(q.running, task.DocumentID)
		follow, hasFollow := q.followUp[task.DocumentID]
		delete(q.followUp, task.DocumentID)
		q.mu.Unlock()
		if hasFollow {
			q.Enqueue(follow)
		}
	}
}

func (q *ReindexQueue) run(task Task) {
	logger := logutil.GetLogger(q.ctx).With(
		zap.String("doc_id", task.DocumentID),
		zap.String("user_id", task.UserID),
	)
	start := time.Now()
	if err := q.handler(q.ctx, task); err != nil {
		logger.Error("reindex task failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}
	logger.Debug("reindex task done", zap.Duration("duration", time.Since(start)))
}
