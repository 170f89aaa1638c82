package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/notewell/notewell/internal/model"
	"github.com/notewell/notewell/internal/pkg/dbutil"
	appErr "github.com/notewell/notewell/internal/pkg/errors"
)

var documentFields = []string{"id", "user_id", "title", "content", "icon", "cover_image", "parent_id", "archived", "published", "ctime", "mtime"}

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":          doc.ID,
		"user_id":     doc.UserID,
		"title":       doc.Title,
		"content":     doc.Content,
		"icon":        doc.Icon,
		"cover_image": doc.CoverImage,
		"parent_id":   doc.ParentID,
		"archived":    doc.Archived,
		"published":   doc.Published,
		"ctime":       doc.Ctime,
		"mtime":       doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if dbutil.IsConflict(err) {
		return appErr.ErrConflict
	}
	return err
}

// Get fetches a document by id regardless of archive state. Used by the
// indexing path, which receives the owner id separately and verifies it.
func (r *DocumentRepo) Get(ctx context.Context, docID string) (*model.Document, error) {
	where := map[string]interface{}{
		"id": docID,
	}
	return r.selectOne(ctx, where)
}

func (r *DocumentRepo) GetByID(ctx context.Context, userID, docID string) (*model.Document, error) {
	where := map[string]interface{}{
		"id":      docID,
		"user_id": userID,
	}
	return r.selectOne(ctx, where)
}

func (r *DocumentRepo) selectOne(ctx context.Context, where map[string]interface{}) (*model.Document, error) {
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var doc model.Document
	if err := scanDocument(rows, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

type DocumentPatch struct {
	Title      *string
	Content    *string
	Icon       *string
	CoverImage *string
	Published  *bool
	Mtime      int64
}

func (r *DocumentRepo) Patch(ctx context.Context, userID, docID string, patch DocumentPatch) error {
	update := map[string]interface{}{
		"mtime": patch.Mtime,
	}
	if patch.Title != nil {
		update["title"] = *patch.Title
	}
	if patch.Content != nil {
		update["content"] = *patch.Content
	}
	if patch.Icon != nil {
		update["icon"] = *patch.Icon
	}
	if patch.CoverImage != nil {
		update["cover_image"] = *patch.CoverImage
	}
	if patch.Published != nil {
		update["published"] = *patch.Published
	}
	where := map[string]interface{}{
		"id":       docID,
		"user_id":  userID,
		"archived": false,
	}
	return r.update(ctx, where, update)
}

func (r *DocumentRepo) SetArchived(ctx context.Context, userID, docID string, archived bool, mtime int64) error {
	where := map[string]interface{}{
		"id":      docID,
		"user_id": userID,
	}
	update := map[string]interface{}{
		"archived": archived,
		"mtime":    mtime,
	}
	return r.update(ctx, where, update)
}

// Restore un-archives a document, optionally detaching it from a still
// archived parent.
func (r *DocumentRepo) Restore(ctx context.Context, userID, docID string, clearParent bool, mtime int64) error {
	where := map[string]interface{}{
		"id":      docID,
		"user_id": userID,
	}
	update := map[string]interface{}{
		"archived": false,
		"mtime":    mtime,
	}
	if clearParent {
		update["parent_id"] = ""
	}
	return r.update(ctx, where, update)
}

func (r *DocumentRepo) update(ctx context.Context, where, update map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo) Delete(ctx context.Context, userID, docID string) error {
	sqlStr, args, err := builder.BuildDelete("documents", map[string]interface{}{
		"id":      docID,
		"user_id": userID,
	})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// ListChildren returns the non-archived documents directly under parentID
// (empty string for the root level).
func (r *DocumentRepo) ListChildren(ctx context.Context, userID, parentID string) ([]model.Document, error) {
	where := map[string]interface{}{
		"user_id":   userID,
		"parent_id": parentID,
		"archived":  false,
		"_orderby":  "ctime desc",
	}
	return r.selectMany(ctx, where)
}

// ListChildrenArchived returns the archived documents directly under
// parentID, used when restoring a subtree.
func (r *DocumentRepo) ListChildrenArchived(ctx context.Context, userID, parentID string) ([]model.Document, error) {
	where := map[string]interface{}{
		"user_id":   userID,
		"parent_id": parentID,
		"archived":  true,
		"_orderby":  "ctime desc",
	}
	return r.selectMany(ctx, where)
}

func (r *DocumentRepo) ListArchived(ctx context.Context, userID string) ([]model.Document, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"archived": true,
		"_orderby": "mtime desc",
	}
	return r.selectMany(ctx, where)
}

func (r *DocumentRepo) ListByIDs(ctx context.Context, userID string, ids []string) ([]model.Document, error) {
	if len(ids) == 0 {
		return []model.Document{}, nil
	}
	where := map[string]interface{}{
		"user_id": userID,
		"id in":   ids,
	}
	return r.selectMany(ctx, where)
}

func (r *DocumentRepo) selectMany(ctx context.Context, where map[string]interface{}) ([]model.Document, error) {
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	docs := make([]model.Document, 0)
	for rows.Next() {
		var doc model.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListStale returns non-archived documents with content whose mtime is newer
// than their newest chunk (or that have no chunks yet). Drives the periodic
// reindex sweep.
func (r *DocumentRepo) ListStale(ctx context.Context, limit int) ([]model.Document, error) {
	const query = `
		SELECT d.id, d.user_id, d.title, d.content, d.icon, d.cover_image, d.parent_id, d.archived, d.published, d.ctime, d.mtime
		FROM documents d
		LEFT JOIN (
			SELECT document_id, MAX(ctime) AS indexed_at
			FROM document_chunks
			GROUP BY document_id
		) c ON d.id = c.document_id
		WHERE d.archived = FALSE
		  AND d.content <> ''
		  AND (c.indexed_at IS NULL OR d.mtime > c.indexed_at)
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	docs := make([]model.Document, 0)
	for rows.Next() {
		var doc model.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func scanDocument(rows *sql.Rows, doc *model.Document) error {
	return rows.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&doc.Content,
		&doc.Icon,
		&doc.CoverImage,
		&doc.ParentID,
		&doc.Archived,
		&doc.Published,
		&doc.Ctime,
		&doc.Mtime,
	)
}
