package service

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/notewell/notewell/internal/ai"
	"github.com/notewell/notewell/internal/model"
	appErr "github.com/notewell/notewell/internal/pkg/errors"
	"github.com/notewell/notewell/internal/rag"
)

// IndexResult reports how a reindex went: partial failure (some chunks
// skipped because their embedding call failed) is visible but not fatal.
type IndexResult struct {
	Stored  int `json:"stored"`
	Skipped int `json:"skipped"`
	Removed int `json:"removed"`
}

type IndexService struct {
	docs      documentStore
	chunks    chunkStore
	embedder  ai.IEmbedder
	chunkSize int
	overlap   int
}

func NewIndexService(docs documentStore, chunks chunkStore, embedder ai.IEmbedder, chunkSize, overlap int) *IndexService {
	if chunkSize <= 0 {
		chunkSize = rag.DefaultChunkSize
	}
	if overlap <= 0 {
		overlap = rag.DefaultChunkOverlap
	}
	return &IndexService{
		docs:      docs,
		chunks:    chunks,
		embedder:  embedder,
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Reindex rebuilds the chunk set for one document from its current
// content: extract, window, embed, then replace the stored chunks. The old
// chunks are removed before the new ones go in, so a concurrent search may
// briefly observe an empty or partial set for this document; it never
// observes stale chunks mixed with a newer generation.
func (s *IndexService) Reindex(ctx context.Context, docID, userID string) (IndexResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("doc_id", docID), zap.String("user_id", userID))
	var result IndexResult

	doc, err := s.docs.Get(ctx, docID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return s.dropChunks(ctx, docID, logger)
		}
		return result, err
	}
	if doc.UserID != userID {
		return result, appErr.ErrForbidden
	}
	if strings.TrimSpace(doc.Content) == "" {
		logger.Info("document has no content, clearing index")
		return s.dropChunks(ctx, docID, logger)
	}

	text := rag.ExtractText(doc.Content)
	if strings.TrimSpace(text) == "" {
		logger.Info("extracted text is empty, clearing index")
		return s.dropChunks(ctx, docID, logger)
	}

	windows := rag.ChunkText(text, s.chunkSize, s.overlap)

	removed, err := s.chunks.DeleteByDocument(ctx, docID)
	if err != nil {
		return result, err
	}
	result.Removed = int(removed)

	now := time.Now().UnixMilli()
	for i, window := range windows {
		embedding, err := s.embedder.Embed(ctx, window, "RETRIEVAL_DOCUMENT")
		if err != nil {
			logger.Warn("embedding failed, skipping chunk", zap.Int("chunk", i), zap.Error(err))
			result.Skipped++
			continue
		}
		if _, err := s.chunks.Insert(ctx, &model.DocumentChunk{
			DocumentID: docID,
			UserID:     userID,
			TextChunk:  window,
			Embedding:  embedding,
			Ctime:      now,
		}); err != nil {
			return result, err
		}
		result.Stored++
	}
	logger.Info("document reindexed",
		zap.Int("stored", result.Stored),
		zap.Int("skipped", result.Skipped),
		zap.Int("removed", result.Removed),
	)
	return result, nil
}

func (s *IndexService) dropChunks(ctx context.Context, docID string, logger *zap.Logger) (IndexResult, error) {
	removed, err := s.chunks.DeleteByDocument(ctx, docID)
	if err != nil {
		return IndexResult{}, err
	}
	if removed > 0 {
		logger.Info("removed chunks", zap.Int64("count", removed))
	}
	return IndexResult{Removed: int(removed)}, nil
}
