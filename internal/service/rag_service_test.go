package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notewell/notewell/internal/model"
)

func TestRAGServiceAnswer_NoMatchesReturnsFixedMessage(t *testing.T) {
	generator := &fakeGenerator{response: "should never be used"}
	svc := NewRAGService(newFakeEmbedder(), generator, newFakeChunkStore())

	answer, err := svc.Answer(context.Background(), "user1", "what is in my notes?")
	require.NoError(t, err)
	require.Equal(t, "I couldn't find any relevant information in your notes to answer that question.", answer)
	require.Equal(t, 0, generator.calls)
}

func TestRAGServiceAnswer_UsesRetrievedContext(t *testing.T) {
	chunks := newFakeChunkStore()
	_, err := chunks.Insert(context.Background(), &model.DocumentChunk{
		DocumentID: "doc-geo",
		UserID:     "user1",
		TextChunk:  "Paris is the capital of France.",
		Embedding:  []float32{1, 0, 0},
	})
	require.NoError(t, err)
	_, err = chunks.Insert(context.Background(), &model.DocumentChunk{
		DocumentID: "doc-bio",
		UserID:     "user1",
		TextChunk:  "Photosynthesis converts light into chemical energy.",
		Embedding:  []float32{0, 1, 0},
	})
	require.NoError(t, err)

	embedder := newFakeEmbedder()
	embedder.vectors["What is the capital of France?"] = []float32{0.9, 0.1, 0}
	generator := &fakeGenerator{response: "The capital of France is Paris."}
	svc := NewRAGService(embedder, generator, chunks)

	answer, err := svc.Answer(context.Background(), "user1", "What is the capital of France?")
	require.NoError(t, err)
	require.Equal(t, "The capital of France is Paris.", answer)
	require.Equal(t, 1, generator.calls)
	require.Contains(t, generator.prompts[0], "Paris is the capital of France.")
	require.Contains(t, generator.prompts[0], "What is the capital of France?")
}

func TestRAGServiceAnswer_ScopedToOwner(t *testing.T) {
	chunks := newFakeChunkStore()
	_, err := chunks.Insert(context.Background(), &model.DocumentChunk{
		DocumentID: "doc-other",
		UserID:     "someone-else",
		TextChunk:  "Paris is the capital of France.",
		Embedding:  []float32{1, 0, 0},
	})
	require.NoError(t, err)

	generator := &fakeGenerator{response: "should never be used"}
	svc := NewRAGService(newFakeEmbedder(), generator, chunks)

	answer, err := svc.Answer(context.Background(), "user1", "What is the capital of France?")
	require.NoError(t, err)
	require.Equal(t, "I couldn't find any relevant information in your notes to answer that question.", answer)
	require.Equal(t, 0, generator.calls)
}

func TestRAGServiceAnswer_GenerationFailureReturnsFallback(t *testing.T) {
	chunks := newFakeChunkStore()
	_, err := chunks.Insert(context.Background(), &model.DocumentChunk{
		DocumentID: "doc1",
		UserID:     "user1",
		TextChunk:  "some grounding text",
		Embedding:  []float32{1, 0, 0},
	})
	require.NoError(t, err)

	generator := &fakeGenerator{err: fmt.Errorf("upstream 500")}
	svc := NewRAGService(newFakeEmbedder(), generator, chunks)

	answer, err := svc.Answer(context.Background(), "user1", "anything")
	require.NoError(t, err)
	require.Equal(t, "Sorry, I encountered an error trying to answer your question based on your notes.", answer)
}

func TestRAGServiceAnswer_CachesSuccessfulAnswers(t *testing.T) {
	chunks := newFakeChunkStore()
	_, err := chunks.Insert(context.Background(), &model.DocumentChunk{
		DocumentID: "doc1",
		UserID:     "user1",
		TextChunk:  "grounding",
		Embedding:  []float32{1, 0, 0},
	})
	require.NoError(t, err)

	generator := &fakeGenerator{response: "cached answer"}
	svc := NewRAGService(newFakeEmbedder(), generator, chunks)

	first, err := svc.Answer(context.Background(), "user1", "same question")
	require.NoError(t, err)
	second, err := svc.Answer(context.Background(), "user1", "same question")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, generator.calls)
}

func TestRAGServiceSearchDocuments_DeduplicatesInRankOrder(t *testing.T) {
	chunks := newFakeChunkStore()
	for i := 0; i < 3; i++ {
		_, err := chunks.Insert(context.Background(), &model.DocumentChunk{
			DocumentID: "doc-close",
			UserID:     "user1",
			TextChunk:  fmt.Sprintf("close chunk %d", i),
			Embedding:  []float32{1, 0, 0},
		})
		require.NoError(t, err)
	}
	_, err := chunks.Insert(context.Background(), &model.DocumentChunk{
		DocumentID: "doc-far",
		UserID:     "user1",
		TextChunk:  "far chunk",
		Embedding:  []float32{0, 1, 0},
	})
	require.NoError(t, err)

	embedder := newFakeEmbedder()
	embedder.vectors["query"] = []float32{1, 0.1, 0}
	svc := NewRAGService(embedder, &fakeGenerator{}, chunks)

	docIDs, scores, err := svc.SearchDocuments(context.Background(), "user1", "query", 5)
	require.NoError(t, err)
	require.Equal(t, []string{"doc-close", "doc-far"}, docIDs)
	require.Len(t, scores, 2)
	require.Greater(t, scores[0], scores[1])
}

func TestRAGServiceGenerateFlashcards_ParsesFencedJSON(t *testing.T) {
	generator := &fakeGenerator{response: "Here you go:\n```json\n[{\"front\": \"Q1?\", \"back\": \"A1.\"}, {\"front\": \"Q2?\", \"back\": \"A2.\"}]\n```"}
	svc := NewRAGService(newFakeEmbedder(), generator, newFakeChunkStore())

	pairs, err := svc.GenerateFlashcards(context.Background(), "some study notes")
	require.NoError(t, err)
	require.Equal(t, []model.FlashcardPair{
		{Front: "Q1?", Back: "A1."},
		{Front: "Q2?", Back: "A2."},
	}, pairs)
}

func TestRAGServiceGenerateFlashcards_EmptyTextSkipsGeneration(t *testing.T) {
	generator := &fakeGenerator{response: "should never be used"}
	svc := NewRAGService(newFakeEmbedder(), generator, newFakeChunkStore())

	pairs, err := svc.GenerateFlashcards(context.Background(), "   ")
	require.NoError(t, err)
	require.Empty(t, pairs)
	require.Equal(t, 0, generator.calls)
}

func TestRAGServiceGenerateFlashcards_MalformedOutputYieldsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "no fenced block", response: `[{"front": "Q?", "back": "A."}]`},
		{name: "invalid json", response: "```json\n[{\"front\": }]\n```"},
		{name: "wrong shape", response: "```json\n[{\"front\": \"Q?\", \"back\": 42}]\n```"},
		{name: "generation error", response: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			generator := &fakeGenerator{response: tc.response}
			if tc.response == "" {
				generator.err = fmt.Errorf("upstream failed")
			}
			svc := NewRAGService(newFakeEmbedder(), generator, newFakeChunkStore())

			pairs, err := svc.GenerateFlashcards(context.Background(), "study notes")
			require.NoError(t, err)
			require.Empty(t, pairs)
		})
	}
}
