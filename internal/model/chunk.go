package model

// DocumentChunk is a derived record: a window of a document's extracted text
// plus its embedding. Chunks are replaced wholesale on reindex, never mutated.
type DocumentChunk struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	TextChunk  string    `json:"text_chunk"`
	Embedding  []float32 `json:"embedding"`
	Ctime      int64     `json:"ctime"`
}

// ChunkMatch is a single vector-search hit, ordered by descending score.
type ChunkMatch struct {
	ChunkID int64   `json:"chunk_id"`
	Score   float32 `json:"score"`
}
