package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/notewell/notewell/internal/pkg/errcode"
	"github.com/notewell/notewell/internal/pkg/response"
	"github.com/notewell/notewell/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
	importer  *service.ImportService
}

func NewDocumentHandler(documents *service.DocumentService, importer *service.ImportService) *DocumentHandler {
	return &DocumentHandler{documents: documents, importer: importer}
}

type documentCreateRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ParentID string `json:"parent_id"`
}

type documentUpdateRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	Icon       *string `json:"icon"`
	CoverImage *string `json:"cover_image"`
	Published  *bool   `json:"published"`
}

type importRequest struct {
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
	ParentID string `json:"parent_id"`
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var req documentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Title == "" {
		response.Error(c, errcode.ErrInvalid, "title required")
		return
	}
	doc, err := h.documents.Create(c.Request.Context(), getUserID(c), service.DocumentCreateInput{
		Title:    req.Title,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.ListChildren(c.Request.Context(), getUserID(c), c.Query("parent_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": docs})
}

func (h *DocumentHandler) ListTrash(c *gin.Context) {
	docs, err := h.documents.ListTrash(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": docs})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Update(c *gin.Context) {
	var req documentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	err := h.documents.Update(c.Request.Context(), getUserID(c), c.Param("id"), service.DocumentUpdateInput{
		Title:      req.Title,
		Content:    req.Content,
		Icon:       req.Icon,
		CoverImage: req.CoverImage,
		Published:  req.Published,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *DocumentHandler) Archive(c *gin.Context) {
	if err := h.documents.Archive(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *DocumentHandler) Restore(c *gin.Context) {
	if err := h.documents.Restore(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *DocumentHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	doc, err := h.importer.ImportMarkdown(c.Request.Context(), getUserID(c), service.ImportInput{
		Title:    req.Title,
		Markdown: req.Markdown,
		ParentID: req.ParentID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}
