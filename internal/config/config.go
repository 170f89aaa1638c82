package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	DBDsn         string           `json:"db_dsn"`
	MigrationsDir string           `json:"migrations_dir"`
	JWTSecret     string           `json:"jwt_secret"`
	JWTTTLHours   int              `json:"jwt_ttl_hours"`
	LogConfig     logger.LogConfig `json:"log_config"`
	AI            AIConfig         `json:"ai"`
	Index         IndexConfig      `json:"index"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	AIRateSeconds int              `json:"ai_rate_seconds"`
	FileStore     FileStoreConfig  `json:"file_store"`
}

type AIConfig struct {
	Provider       string      `json:"provider"`
	GenerateModel  string      `json:"generate_model"`
	EmbedModel     string      `json:"embed_model"`
	EmbedDimension int         `json:"embed_dimension"`
	Data           interface{} `json:"data"`
}

type IndexConfig struct {
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
	QueueWorkers int    `json:"queue_workers"`
	QueueBuffer  int    `json:"queue_buffer"`
	SweepSpec    string `json:"sweep_spec"`
	CacheSpec    string `json:"cache_cleanup_spec"`
}

type FileStoreConfig struct {
	Type      string      `json:"type"`
	PublicURL string      `json:"public_url"`
	Data      interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.DBDsn == "" {
		return nil, fmt.Errorf("db_dsn is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "./migrations"
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.GenerateModel == "" || cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.generate_model and ai.embed_model are required")
	}
	if cfg.AI.EmbedDimension == 0 {
		cfg.AI.EmbedDimension = 768
	}
	if cfg.AI.EmbedDimension != 768 {
		return nil, fmt.Errorf("ai.embed_dimension must be 768, got %d", cfg.AI.EmbedDimension)
	}
	if cfg.Index.ChunkSize <= 0 {
		cfg.Index.ChunkSize = 500
	}
	if cfg.Index.ChunkOverlap <= 0 {
		cfg.Index.ChunkOverlap = 50
	}
	if cfg.Index.ChunkOverlap >= cfg.Index.ChunkSize {
		return nil, fmt.Errorf("index.chunk_overlap must be smaller than index.chunk_size")
	}
	if cfg.Index.QueueWorkers <= 0 {
		cfg.Index.QueueWorkers = 2
	}
	if cfg.Index.QueueBuffer <= 0 {
		cfg.Index.QueueBuffer = 256
	}
	if cfg.Index.SweepSpec == "" {
		cfg.Index.SweepSpec = "*/10 * * * *"
	}
	if cfg.Index.CacheSpec == "" {
		cfg.Index.CacheSpec = "0 4 * * *"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
		if cfg.FileStore.Data == nil {
			cfg.FileStore.Data = map[string]interface{}{"dir": "./data/files"}
		}
	}
	return &cfg, nil
}
