package model

// CachedEmbedding is one persisted embedder result, keyed by model, task
// type and content hash so a model swap never serves another model's
// vectors.
type CachedEmbedding struct {
	ModelName   string    `json:"model_name"`
	TaskType    string    `json:"task_type"`
	ContentHash string    `json:"content_hash"`
	Embedding   []float32 `json:"embedding"`
	Ctime       int64     `json:"ctime"`
}
