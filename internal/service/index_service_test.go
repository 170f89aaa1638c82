package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notewell/notewell/internal/model"
	appErr "github.com/notewell/notewell/internal/pkg/errors"
)

func blockContent(t *testing.T, paragraphs ...string) string {
	t.Helper()
	blocks := make([]map[string]interface{}, 0, len(paragraphs))
	for _, text := range paragraphs {
		blocks = append(blocks, map[string]interface{}{
			"type": "paragraph",
			"content": []interface{}{
				map[string]interface{}{"type": "text", "text": text},
			},
		})
	}
	data, err := json.Marshal(blocks)
	require.NoError(t, err)
	return string(data)
}

func TestIndexServiceReindex_StoresChunks(t *testing.T) {
	docs := newFakeDocStore(&model.Document{
		ID:      "doc1",
		UserID:  "user1",
		Content: blockContent(t, "Paris is the capital of France.", "The Seine flows through it."),
	})
	chunks := newFakeChunkStore()
	svc := NewIndexService(docs, chunks, newFakeEmbedder(), 500, 50)

	result, err := svc.Reindex(context.Background(), "doc1", "user1")
	require.NoError(t, err)
	require.Equal(t, 1, result.Stored)
	require.Equal(t, 0, result.Skipped)
	require.Equal(t, 0, result.Removed)

	stored := chunks.byDocument("doc1")
	require.Len(t, stored, 1)
	require.Equal(t, "user1", stored[0].UserID)
	require.Contains(t, stored[0].TextChunk, "Paris is the capital of France.")
	require.Contains(t, stored[0].TextChunk, "The Seine flows through it.")
}

func TestIndexServiceReindex_ReplacesPreviousChunks(t *testing.T) {
	docs := newFakeDocStore(&model.Document{
		ID:      "doc1",
		UserID:  "user1",
		Content: blockContent(t, "Second version of the note."),
	})
	chunks := newFakeChunkStore()
	_, err := chunks.Insert(context.Background(), &model.DocumentChunk{
		DocumentID: "doc1",
		UserID:     "user1",
		TextChunk:  "First version of the note.",
		Embedding:  []float32{1, 0, 0},
	})
	require.NoError(t, err)
	svc := NewIndexService(docs, chunks, newFakeEmbedder(), 500, 50)

	result, err := svc.Reindex(context.Background(), "doc1", "user1")
	require.NoError(t, err)
	require.Equal(t, 1, result.Stored)
	require.Equal(t, 1, result.Removed)

	stored := chunks.byDocument("doc1")
	require.Len(t, stored, 1)
	require.Equal(t, "Second version of the note.", stored[0].TextChunk)
}

func TestIndexServiceReindex_Idempotent(t *testing.T) {
	docs := newFakeDocStore(&model.Document{
		ID:      "doc1",
		UserID:  "user1",
		Content: blockContent(t, strings.Repeat("alpha beta gamma ", 80)),
	})
	chunks := newFakeChunkStore()
	svc := NewIndexService(docs, chunks, newFakeEmbedder(), 500, 50)

	first, err := svc.Reindex(context.Background(), "doc1", "user1")
	require.NoError(t, err)
	firstChunks := chunks.byDocument("doc1")

	second, err := svc.Reindex(context.Background(), "doc1", "user1")
	require.NoError(t, err)
	secondChunks := chunks.byDocument("doc1")

	require.Equal(t, first.Stored, second.Stored)
	require.Equal(t, len(firstChunks), len(secondChunks))
	firstTexts := make(map[string]bool)
	for _, chunk := range firstChunks {
		firstTexts[chunk.TextChunk] = true
	}
	for _, chunk := range secondChunks {
		require.True(t, firstTexts[chunk.TextChunk])
	}
}

func TestIndexServiceReindex_EmptyContentClearsIndex(t *testing.T) {
	docs := newFakeDocStore(&model.Document{ID: "doc1", UserID: "user1", Content: ""})
	chunks := newFakeChunkStore()
	_, err := chunks.Insert(context.Background(), &model.DocumentChunk{
		DocumentID: "doc1",
		UserID:     "user1",
		TextChunk:  "stale",
		Embedding:  []float32{1, 0, 0},
	})
	require.NoError(t, err)
	svc := NewIndexService(docs, chunks, newFakeEmbedder(), 500, 50)

	result, err := svc.Reindex(context.Background(), "doc1", "user1")
	require.NoError(t, err)
	require.Equal(t, 0, result.Stored)
	require.Equal(t, 1, result.Removed)
	require.Empty(t, chunks.byDocument("doc1"))
}

func TestIndexServiceReindex_MissingDocumentClearsIndex(t *testing.T) {
	chunks := newFakeChunkStore()
	_, err := chunks.Insert(context.Background(), &model.DocumentChunk{
		DocumentID: "gone",
		UserID:     "user1",
		TextChunk:  "orphan",
		Embedding:  []float32{1, 0, 0},
	})
	require.NoError(t, err)
	svc := NewIndexService(newFakeDocStore(), chunks, newFakeEmbedder(), 500, 50)

	result, err := svc.Reindex(context.Background(), "gone", "user1")
	require.NoError(t, err)
	require.Equal(t, 1, result.Removed)
	require.Empty(t, chunks.byDocument("gone"))
}

func TestIndexServiceReindex_OwnerMismatch(t *testing.T) {
	docs := newFakeDocStore(&model.Document{
		ID:      "doc1",
		UserID:  "user1",
		Content: blockContent(t, "private note"),
	})
	svc := NewIndexService(docs, newFakeChunkStore(), newFakeEmbedder(), 500, 50)

	_, err := svc.Reindex(context.Background(), "doc1", "intruder")
	require.ErrorIs(t, err, appErr.ErrForbidden)
}

func TestIndexServiceReindex_EmbedFailureSkipsChunk(t *testing.T) {
	docs := newFakeDocStore(&model.Document{
		ID:      "doc1",
		UserID:  "user1",
		Content: blockContent(t, "resilient note"),
	})
	chunks := newFakeChunkStore()
	embedder := newFakeEmbedder()
	embedder.failOn["resilient note"] = true
	svc := NewIndexService(docs, chunks, embedder, 500, 50)

	result, err := svc.Reindex(context.Background(), "doc1", "user1")
	require.NoError(t, err)
	require.Equal(t, 0, result.Stored)
	require.Equal(t, 1, result.Skipped)
	require.Empty(t, chunks.byDocument("doc1"))
}
