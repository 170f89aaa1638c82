package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/notewell/notewell/internal/model"
	"github.com/notewell/notewell/internal/pkg/errcode"
	"github.com/notewell/notewell/internal/pkg/response"
	"github.com/notewell/notewell/internal/rag"
	"github.com/notewell/notewell/internal/service"
)

type DeckHandler struct {
	decks     *service.DeckService
	documents *service.DocumentService
}

func NewDeckHandler(decks *service.DeckService, documents *service.DocumentService) *DeckHandler {
	return &DeckHandler{decks: decks, documents: documents}
}

type deckCreateRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	SourceDocumentID string `json:"source_document_id"`
}

type deckCardsRequest struct {
	Cards            []model.FlashcardPair `json:"cards"`
	SourceDocumentID string                `json:"source_document_id"`
}

type deckGenerateRequest struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
}

func (h *DeckHandler) Create(c *gin.Context) {
	var req deckCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Title == "" {
		response.Error(c, errcode.ErrInvalid, "title required")
		return
	}
	deck, err := h.decks.Create(c.Request.Context(), getUserID(c), service.DeckCreateInput{
		Title:            req.Title,
		Description:      req.Description,
		SourceDocumentID: req.SourceDocumentID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, deck)
}

func (h *DeckHandler) List(c *gin.Context) {
	decks, err := h.decks.List(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": decks})
}

func (h *DeckHandler) ListCards(c *gin.Context) {
	cards, err := h.decks.ListCards(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": cards})
}

func (h *DeckHandler) AddCards(c *gin.Context) {
	var req deckCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if len(req.Cards) == 0 {
		response.Error(c, errcode.ErrInvalid, "cards required")
		return
	}
	count, err := h.decks.AddCards(c.Request.Context(), getUserID(c), c.Param("id"), req.Cards, req.SourceDocumentID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

// Generate builds flashcards from raw text or a stored document and saves
// them into the deck in one call.
func (h *DeckHandler) Generate(c *gin.Context) {
	var req deckGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	userID := getUserID(c)
	text := req.Text
	sourceDocumentID := ""
	if text == "" && req.DocumentID != "" {
		doc, err := h.documents.Get(c.Request.Context(), userID, req.DocumentID)
		if err != nil {
			handleError(c, err)
			return
		}
		text = rag.ExtractText(doc.Content)
		sourceDocumentID = doc.ID
	}
	if text == "" {
		response.Error(c, errcode.ErrInvalid, "text or document_id required")
		return
	}
	pairs, err := h.decks.GenerateInto(c.Request.Context(), userID, c.Param("id"), text, sourceDocumentID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"flashcards": pairs})
}

func (h *DeckHandler) Delete(c *gin.Context) {
	if err := h.decks.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
