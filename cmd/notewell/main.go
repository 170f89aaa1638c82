package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/notewell/notewell/internal/ai"
	"github.com/notewell/notewell/internal/config"
	"github.com/notewell/notewell/internal/embedcache"
	"github.com/notewell/notewell/internal/filestore"
	"github.com/notewell/notewell/internal/handler"
	"github.com/notewell/notewell/internal/job"
	"github.com/notewell/notewell/internal/middleware"
	"github.com/notewell/notewell/internal/pkg/jwt"
	"github.com/notewell/notewell/internal/queue"
	"github.com/notewell/notewell/internal/repo"
	"github.com/notewell/notewell/internal/schedule"
	"github.com/notewell/notewell/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "notewell",
		Short: "notewell backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run notewell server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			db, err := repo.Open(cfg.DBDsn)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db, cfg.MigrationsDir); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	var tokenUserID string
	var tokenTTLHours int
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "issue a jwt for the given user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			if tokenUserID == "" {
				return fmt.Errorf("--user is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ttl := time.Duration(tokenTTLHours) * time.Hour
			if tokenTTLHours <= 0 {
				ttl = time.Duration(cfg.JWTTTLHours) * time.Hour
			}
			token, err := jwt.GenerateToken(tokenUserID, []byte(cfg.JWTSecret), ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "user id to embed in the token")
	tokenCmd.Flags().IntVar(&tokenTTLHours, "ttl-hours", 0, "token lifetime in hours")
	rootCmd.AddCommand(tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, db *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	docRepo := repo.NewDocumentRepo(db)
	chunkRepo := repo.NewChunkRepo(db)
	deckRepo := repo.NewDeckRepo(db)
	cardRepo := repo.NewFlashcardRepo(db)
	cacheRepo := repo.NewEmbeddingCacheRepo(db)

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai embed provider: %w", err)
	}
	generator := ai.NewGenerator(aiProvider, cfg.AI.GenerateModel)
	embedder := embedcache.NewLRUEmbedder(
		embedcache.NewDBEmbedder(ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel), cacheRepo),
		8192, time.Hour,
	)

	indexService := service.NewIndexService(docRepo, chunkRepo, embedder, cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)
	reindexQueue := queue.NewReindexQueue(func(ctx context.Context, task queue.Task) error {
		_, err := indexService.Reindex(ctx, task.DocumentID, task.UserID)
		return err
	}, cfg.Index.QueueBuffer)

	ragService := service.NewRAGService(embedder, generator, chunkRepo)
	documentService := service.NewDocumentService(docRepo, chunkRepo, reindexQueue)
	deckService := service.NewDeckService(deckRepo, cardRepo, ragService)
	importService := service.NewImportService(documentService)

	store, err := filestore.New(cfg.FileStore.Type, cfg.FileStore.Data)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	deps := handler.RouterDeps{
		Documents:    handler.NewDocumentHandler(documentService, importService),
		Decks:        handler.NewDeckHandler(deckService, documentService),
		AI:           handler.NewAIHandler(ragService, documentService),
		Files:        handler.NewFileHandler(store, cfg.FileStore.Type, cfg.FileStore.PublicURL),
		JWTSecret:    []byte(cfg.JWTSecret),
		AIRateWindow: time.Duration(cfg.AIRateSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reindexQueue.Start(ctx, cfg.Index.QueueWorkers)

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewReindexSweepJob(docRepo, reindexQueue, 200), cfg.Index.SweepSpec); err != nil {
		return fmt.Errorf("schedule reindex sweep: %w", err)
	}
	if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(cacheRepo, 30*24*time.Hour), cfg.Index.CacheSpec); err != nil {
		return fmt.Errorf("schedule cache cleanup: %w", err)
	}
	scheduler.Start(ctx)

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	scheduler.Stop()
	reindexQueue.Stop()
	return nil
}
