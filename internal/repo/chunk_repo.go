package repo

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"

	"github.com/notewell/notewell/internal/model"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) Insert(ctx context.Context, chunk *model.DocumentChunk) (int64, error) {
	const query = `
		INSERT INTO document_chunks (document_id, user_id, text_chunk, embedding, ctime)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		chunk.DocumentID,
		chunk.UserID,
		chunk.TextChunk,
		pgvector.NewVector(chunk.Embedding),
		chunk.Ctime,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// DeleteByDocument drops every chunk of a document and reports how many
// were removed.
func (r *ChunkRepo) DeleteByDocument(ctx context.Context, docID string) (int64, error) {
	const query = `DELETE FROM document_chunks WHERE document_id = $1`
	res, err := r.db.ExecContext(ctx, query, docID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ChunkRepo) GetByID(ctx context.Context, chunkID int64) (*model.DocumentChunk, error) {
	const query = `
		SELECT id, document_id, user_id, text_chunk, embedding, ctime
		FROM document_chunks
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, chunkID)
	var chunk model.DocumentChunk
	var embedding pgvector.Vector
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.UserID, &chunk.TextChunk, &embedding, &chunk.Ctime); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	chunk.Embedding = embedding.Slice()
	return &chunk, nil
}

// Search runs an owner-scoped nearest-neighbor query. Cosine distance is
// converted to a similarity score so that higher means more relevant.
func (r *ChunkRepo) Search(ctx context.Context, vector []float32, limit int, userID string) ([]model.ChunkMatch, error) {
	const query = `
		SELECT id, 1 - (embedding <=> $1) AS score
		FROM document_chunks
		WHERE user_id = $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(vector), userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	matches := make([]model.ChunkMatch, 0, limit)
	for rows.Next() {
		var m model.ChunkMatch
		if err := rows.Scan(&m.ChunkID, &m.Score); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
