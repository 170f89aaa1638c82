package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/notewell/notewell/internal/model"
	appErr "github.com/notewell/notewell/internal/pkg/errors"
	"github.com/notewell/notewell/internal/rag"
)

type fakeDocStore struct {
	docs map[string]*model.Document
}

func newFakeDocStore(docs ...*model.Document) *fakeDocStore {
	store := &fakeDocStore{docs: make(map[string]*model.Document)}
	for _, doc := range docs {
		store.docs[doc.ID] = doc
	}
	return store
}

func (s *fakeDocStore) Get(ctx context.Context, docID string) (*model.Document, error) {
	doc, ok := s.docs[docID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

// fakeChunkStore is an in-memory chunk table whose Search ranks by cosine
// similarity, mirroring the pgvector ordering.
type fakeChunkStore struct {
	mu     sync.Mutex
	nextID int64
	chunks map[int64]*model.DocumentChunk
}

func newFakeChunkStore() *fakeChunkStore {
	return &fakeChunkStore{chunks: make(map[int64]*model.DocumentChunk)}
}

func (s *fakeChunkStore) Insert(ctx context.Context, chunk *model.DocumentChunk) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	copied := *chunk
	copied.ID = s.nextID
	s.chunks[copied.ID] = &copied
	return copied.ID, nil
}

func (s *fakeChunkStore) DeleteByDocument(ctx context.Context, docID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, chunk := range s.chunks {
		if chunk.DocumentID == docID {
			delete(s.chunks, id)
			removed++
		}
	}
	return removed, nil
}

func (s *fakeChunkStore) GetByID(ctx context.Context, chunkID int64) (*model.DocumentChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, ok := s.chunks[chunkID]
	if !ok {
		return nil, nil
	}
	copied := *chunk
	return &copied, nil
}

func (s *fakeChunkStore) Search(ctx context.Context, vector []float32, limit int, userID string) ([]model.ChunkMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := make([]model.ChunkMatch, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		if chunk.UserID != userID {
			continue
		}
		matches = append(matches, model.ChunkMatch{
			ChunkID: chunk.ID,
			Score:   rag.CosineSimilarity(vector, chunk.Embedding),
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *fakeChunkStore) byDocument(docID string) []*model.DocumentChunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.DocumentChunk
	for _, chunk := range s.chunks {
		if chunk.DocumentID == docID {
			out = append(out, chunk)
		}
	}
	return out
}

// fakeEmbedder returns scripted vectors. Texts listed in failOn error out;
// unknown texts fall back to a fixed vector so chunk windows always embed.
type fakeEmbedder struct {
	vectors map[string][]float32
	failOn  map[string]bool
	calls   int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		vectors: make(map[string][]float32),
		failOn:  make(map[string]bool),
	}
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	e.calls++
	if e.failOn[text] {
		return nil, fmt.Errorf("embed upstream failed")
	}
	if vec, ok := e.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0, 0}, nil
}

func (e *fakeEmbedder) ModelName() string {
	return "fake-embedding-model"
}

type fakeGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}
