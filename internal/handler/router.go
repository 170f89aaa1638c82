package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notewell/notewell/internal/middleware"
)

type RouterDeps struct {
	Documents    *DocumentHandler
	Decks        *DeckHandler
	AI           *AIHandler
	Files        *FileHandler
	JWTSecret    []byte
	AIRateWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.POST("/documents", deps.Documents.Create)
	authGroup.GET("/documents", deps.Documents.List)
	authGroup.GET("/documents/trash", deps.Documents.ListTrash)
	authGroup.GET("/documents/:id", deps.Documents.Get)
	authGroup.PUT("/documents/:id", deps.Documents.Update)
	authGroup.PUT("/documents/:id/archive", deps.Documents.Archive)
	authGroup.PUT("/documents/:id/restore", deps.Documents.Restore)
	authGroup.DELETE("/documents/:id", deps.Documents.Delete)
	authGroup.POST("/documents/import", deps.Documents.Import)

	authGroup.POST("/decks", deps.Decks.Create)
	authGroup.GET("/decks", deps.Decks.List)
	authGroup.GET("/decks/:id/cards", deps.Decks.ListCards)
	authGroup.POST("/decks/:id/cards", deps.Decks.AddCards)
	authGroup.POST("/decks/:id/generate", deps.Decks.Generate)
	authGroup.DELETE("/decks/:id", deps.Decks.Delete)

	aiGroup := authGroup.Group("/ai")
	if deps.AIRateWindow > 0 {
		aiGroup.Use(middleware.RateLimit(deps.AIRateWindow))
	}
	aiGroup.GET("/search", deps.AI.Search)
	aiGroup.POST("/ask", deps.AI.Ask)
	aiGroup.POST("/flashcards", deps.AI.Flashcards)

	authGroup.POST("/files/upload", deps.Files.Upload)
	api.GET("/files/:key", deps.Files.Get)
}
