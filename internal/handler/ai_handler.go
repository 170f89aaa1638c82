package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/notewell/notewell/internal/model"
	"github.com/notewell/notewell/internal/pkg/errcode"
	"github.com/notewell/notewell/internal/pkg/response"
	"github.com/notewell/notewell/internal/rag"
	"github.com/notewell/notewell/internal/service"
)

type AIHandler struct {
	rag       *service.RAGService
	documents *service.DocumentService
}

func NewAIHandler(rag *service.RAGService, documents *service.DocumentService) *AIHandler {
	return &AIHandler{rag: rag, documents: documents}
}

type askRequest struct {
	Query string `json:"query"`
}

type flashcardsRequest struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
}

func (h *AIHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "query required")
		return
	}
	answer, err := h.rag.Answer(c.Request.Context(), getUserID(c), req.Query)
	if err != nil {
		if errors.Is(err, service.ErrAIUnavailable) {
			response.Error(c, errcode.ErrAIUnavailable, "ai not configured")
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"answer": answer})
}

func (h *AIHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.Error(c, errcode.ErrInvalid, "query required")
		return
	}
	topK := 0
	if value := c.Query("k"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			topK = parsed
		}
	}
	userID := getUserID(c)
	docIDs, scores, err := h.rag.SearchDocuments(c.Request.Context(), userID, query, topK)
	if err != nil {
		if errors.Is(err, service.ErrAIUnavailable) {
			response.Error(c, errcode.ErrAIUnavailable, "ai not configured")
			return
		}
		handleError(c, err)
		return
	}
	if len(docIDs) == 0 {
		response.Success(c, gin.H{"items": []interface{}{}})
		return
	}
	docs, err := h.documents.ListByIDs(c.Request.Context(), userID, docIDs)
	if err != nil {
		handleError(c, err)
		return
	}
	// Preserve relevance order; ListByIDs returns rows in storage order.
	docMap := make(map[string]model.Document, len(docs))
	for _, doc := range docs {
		docMap[doc.ID] = doc
	}
	type searchItem struct {
		Document model.Document `json:"document"`
		Score    float32        `json:"score"`
	}
	items := make([]searchItem, 0, len(docIDs))
	for i, id := range docIDs {
		if doc, ok := docMap[id]; ok {
			items = append(items, searchItem{Document: doc, Score: scores[i]})
		}
	}
	response.Success(c, gin.H{"items": items})
}

// Flashcards generates front/back pairs from raw text or from a stored
// document's extracted text, without touching any deck.
func (h *AIHandler) Flashcards(c *gin.Context) {
	var req flashcardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	text := req.Text
	if text == "" && req.DocumentID != "" {
		doc, err := h.documents.Get(c.Request.Context(), getUserID(c), req.DocumentID)
		if err != nil {
			handleError(c, err)
			return
		}
		text = rag.ExtractText(doc.Content)
	}
	cards, err := h.rag.GenerateFlashcards(c.Request.Context(), text)
	if err != nil {
		if errors.Is(err, service.ErrAIUnavailable) {
			response.Error(c, errcode.ErrAIUnavailable, "ai not configured")
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"flashcards": cards})
}
