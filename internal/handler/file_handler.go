package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/notewell/notewell/internal/filestore"
	"github.com/notewell/notewell/internal/pkg/errcode"
	"github.com/notewell/notewell/internal/pkg/response"
)

type FileHandler struct {
	store     filestore.Store
	storeType string
	publicURL string
}

type UploadResponse struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
}

func NewFileHandler(store filestore.Store, storeType, publicURL string) *FileHandler {
	return &FileHandler{store: store, storeType: strings.ToLower(storeType), publicURL: publicURL}
}

func (h *FileHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	defer opened.Close()

	contentType, err := sniffContentType(opened)
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to read file")
		return
	}

	key := buildFileKey(getUserID(c), file.Filename)
	if err := h.store.Save(c.Request.Context(), key, opened, file.Size); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, UploadResponse{
		URL:         h.buildFileURL(c, key),
		Name:        file.Filename,
		ContentType: contentType,
	})
}

// Get streams a stored file back. Only the local store serves through the
// API; an s3-backed store hands out direct URLs instead.
func (h *FileHandler) Get(c *gin.Context) {
	if h.storeType != "local" {
		c.Status(http.StatusNotFound)
		return
	}
	key := c.Param("key")
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") {
		c.Status(http.StatusBadRequest)
		return
	}
	file, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close()
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	_, _ = io.Copy(c.Writer, file)
}

func (h *FileHandler) buildFileURL(c *gin.Context, key string) string {
	key = strings.TrimPrefix(key, "/")
	base := strings.TrimSuffix(h.publicURL, "/")
	if base == "" {
		base = requestBaseURL(c) + "/api/v1/files"
	}
	return base + "/" + key
}

func requestBaseURL(c *gin.Context) string {
	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		if c.Request.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return proto + "://" + host
}

func sniffContentType(file filestore.ReadSeekCloser) (string, error) {
	buf := make([]byte, 512)
	read, err := file.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:read]), nil
}

func buildFileKey(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := randomHex(8)
	if userID != "" {
		base = userID + "_" + base
	}
	return base + ext
}

func randomHex(size int) string {
	if size <= 0 {
		return ""
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
