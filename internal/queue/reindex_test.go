package queue

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReindexQueueCollapsesDuplicates(t *testing.T) {
	var mu sync.Mutex
	counts := make(map[string]int)
	q := NewReindexQueue(func(ctx context.Context, task Task) error {
		mu.Lock()
		counts[task.DocumentID]++
		mu.Unlock()
		return nil
	}, 16)

	// queued before any worker starts: duplicates for one document must
	// collapse to a single run
	q.EnqueueReindex("doc-a", "u1")
	q.EnqueueReindex("doc-a", "u1")
	q.EnqueueReindex("doc-a", "u1")
	q.EnqueueReindex("doc-b", "u1")

	q.Start(context.Background(), 1)
	q.Stop()

	require.Equal(t, 1, counts["doc-a"])
	require.Equal(t, 1, counts["doc-b"])
}

func TestReindexQueueProcessesAllDocuments(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]bool)
	q := NewReindexQueue(func(ctx context.Context, task Task) error {
		mu.Lock()
		seen[task.DocumentID] = true
		mu.Unlock()
		return nil
	}, 64)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		q.EnqueueReindex(id, "u1")
	}
	q.Start(context.Background(), 3)
	q.Stop()
	require.Len(t, seen, 5)
}

func TestReindexQueueEnqueueAfterStop(t *testing.T) {
	q := NewReindexQueue(func(ctx context.Context, task Task) error { return nil }, 4)
	q.Start(context.Background(), 1)
	q.Stop()
	// must not panic
	q.EnqueueReindex("late", "u1")
}
