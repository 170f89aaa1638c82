package service

import (
	"context"

	"github.com/notewell/notewell/internal/model"
)

// documentStore and chunkStore are the collaborator contracts the pipeline
// services consume. The repo package satisfies both; tests substitute fakes.

type documentStore interface {
	Get(ctx context.Context, docID string) (*model.Document, error)
}

type chunkStore interface {
	Insert(ctx context.Context, chunk *model.DocumentChunk) (int64, error)
	DeleteByDocument(ctx context.Context, docID string) (int64, error)
	GetByID(ctx context.Context, chunkID int64) (*model.DocumentChunk, error)
	Search(ctx context.Context, vector []float32, limit int, userID string) ([]model.ChunkMatch, error)
}
