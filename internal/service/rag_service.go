package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/notewell/notewell/internal/ai"
	"github.com/notewell/notewell/internal/model"
)

var ErrAIUnavailable = ai.ErrUnavailable

const (
	// DefaultTopK bounds how many chunks ground an answer.
	DefaultTopK = 5

	noRelevantInfoMessage = "I couldn't find any relevant information in your notes to answer that question."
	answerFailureMessage  = "Sorry, I encountered an error trying to answer your question based on your notes."
	contextSeparator      = "\n\n---\n\n"
)

const answerPromptTemplate = `Based *only* on the following context from the user's notes, answer the user's question. Do not use any external knowledge. If the context doesn't contain the answer, say so.

Context from notes:
---
%s
---

User's Question: %s

Answer:`

const flashcardPromptTemplate = `Analyze the following text content from a user's notes. Identify key concepts, terms, definitions, or question/answer pairs suitable for creating flashcards. Generate a list of flashcards based on this text. Each flashcard should have a 'front' (question/term) and a 'back' (answer/definition).

Return the result ONLY as a valid JSON array of objects, where each object has a "front" and a "back" key, inside a fenced code block labeled json. Example format: [{"front": "Example Question?", "back": "Example Answer."}]

Do not include any introductory text, explanations, or markdown formatting outside the fenced JSON array itself.

Text Content:
---
%s
---

JSON Array Output:`

var fencedJSONRegex = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// RAGService answers questions and generates flashcards from a user's
// indexed notes.
type RAGService struct {
	embedder  ai.IEmbedder
	generator ai.IGenerator
	chunks    chunkStore
	answers   *expirable.LRU[string, string]
}

func NewRAGService(embedder ai.IEmbedder, generator ai.IGenerator, chunks chunkStore) *RAGService {
	return &RAGService{
		embedder:  embedder,
		generator: generator,
		chunks:    chunks,
		answers:   expirable.NewLRU[string, string](4096, nil, 2*time.Hour),
	}
}

// Retrieve embeds the query and runs an owner-scoped nearest-neighbor
// search. A failed query embedding is fatal: without a vector there is
// nothing to search with. Zero matches is a valid outcome, not an error.
func (s *RAGService) Retrieve(ctx context.Context, userID, query string, topK int) ([]model.ChunkMatch, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	queryEmbedding, err := s.embedder.Embed(ctx, query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := s.chunks.Search(ctx, queryEmbedding, topK, userID)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Answer runs the full RAG loop: retrieve, assemble grounding context,
// generate. Generation failures are converted to a fixed fallback string;
// only retrieval infrastructure failures surface as errors.
func (s *RAGService) Answer(ctx context.Context, userID, query string) (string, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("user_id", userID))
	cacheKey := s.cacheKey("answer", userID, query)
	if cached, ok := s.answers.Get(cacheKey); ok {
		return cached, nil
	}

	matches, err := s.Retrieve(ctx, userID, query, DefaultTopK)
	if err != nil {
		return "", err
	}
	logger.Debug("retrieved chunks", zap.Int("count", len(matches)))
	if len(matches) == 0 {
		return noRelevantInfoMessage, nil
	}

	// re-fetch chunk text in rank order; a chunk deleted by a concurrent
	// reindex is skipped
	parts := make([]string, 0, len(matches))
	for _, match := range matches {
		chunk, err := s.chunks.GetByID(ctx, match.ChunkID)
		if err != nil {
			return "", err
		}
		if chunk == nil {
			continue
		}
		parts = append(parts, chunk.TextChunk)
	}
	contextText := strings.Join(parts, contextSeparator)

	prompt := fmt.Sprintf(answerPromptTemplate, contextText, query)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		logger.Error("answer generation failed", zap.Error(err))
		return answerFailureMessage, nil
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return answerFailureMessage, nil
	}
	s.answers.Add(cacheKey, answer)
	return answer, nil
}

// SearchDocuments maps the best-matching chunks back to their documents,
// deduplicated in rank order.
func (s *RAGService) SearchDocuments(ctx context.Context, userID, query string, topK int) ([]string, []float32, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	// over-fetch since several chunks may belong to one document
	matches, err := s.Retrieve(ctx, userID, query, topK*3)
	if err != nil {
		return nil, nil, err
	}
	seen := make(map[string]bool)
	docIDs := make([]string, 0, topK)
	scores := make([]float32, 0, topK)
	for _, match := range matches {
		chunk, err := s.chunks.GetByID(ctx, match.ChunkID)
		if err != nil {
			return nil, nil, err
		}
		if chunk == nil || seen[chunk.DocumentID] {
			continue
		}
		seen[chunk.DocumentID] = true
		docIDs = append(docIDs, chunk.DocumentID)
		scores = append(scores, match.Score)
		if len(docIDs) >= topK {
			break
		}
	}
	return docIDs, scores, nil
}

// GenerateFlashcards turns raw text into front/back pairs. Generation is
// best-effort: any upstream or parse failure yields an empty slice, never
// an error, so callers always hold a well-typed result.
func (s *RAGService) GenerateFlashcards(ctx context.Context, text string) ([]model.FlashcardPair, error) {
	logger := logutil.GetLogger(ctx)
	if strings.TrimSpace(text) == "" {
		return []model.FlashcardPair{}, nil
	}
	prompt := fmt.Sprintf(flashcardPromptTemplate, text)
	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		logger.Error("flashcard generation failed", zap.Error(err))
		return []model.FlashcardPair{}, nil
	}
	pairs := parseFlashcards(ctx, raw)
	logger.Info("flashcards generated", zap.Int("count", len(pairs)))
	return pairs, nil
}

// parseFlashcards extracts a fenced json array from the model output and
// validates its shape. The model's output is an untrusted format: anything
// unexpected collapses to an empty result.
func parseFlashcards(ctx context.Context, raw string) []model.FlashcardPair {
	logger := logutil.GetLogger(ctx)
	match := fencedJSONRegex.FindStringSubmatch(raw)
	if match == nil {
		logger.Warn("no fenced json block in model response")
		return []model.FlashcardPair{}
	}
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(match[1])), &items); err != nil {
		logger.Warn("flashcard json malformed", zap.Error(err))
		return []model.FlashcardPair{}
	}
	pairs := make([]model.FlashcardPair, 0, len(items))
	for _, item := range items {
		front, frontOK := item["front"].(string)
		back, backOK := item["back"].(string)
		if !frontOK || !backOK {
			logger.Warn("flashcard entry has wrong shape")
			return []model.FlashcardPair{}
		}
		pairs = append(pairs, model.FlashcardPair{Front: front, Back: back})
	}
	return pairs
}

func (s *RAGService) cacheKey(feature, userID, text string) string {
	hash := sha256.Sum256([]byte(userID + "\x00" + text))
	return feature + ":" + hex.EncodeToString(hash[:])
}
