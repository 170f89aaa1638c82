package service

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/notewell/notewell/internal/model"
	appErr "github.com/notewell/notewell/internal/pkg/errors"
	"github.com/notewell/notewell/internal/repo"
)

// reindexScheduler decouples content updates from the indexing work: the
// request path only enqueues, the queue workers do the slow part.
type reindexScheduler interface {
	EnqueueReindex(docID, userID string)
}

type DocumentService struct {
	docs      *repo.DocumentRepo
	chunks    *repo.ChunkRepo
	scheduler reindexScheduler
}

func NewDocumentService(docs *repo.DocumentRepo, chunks *repo.ChunkRepo, scheduler reindexScheduler) *DocumentService {
	return &DocumentService{docs: docs, chunks: chunks, scheduler: scheduler}
}

type DocumentCreateInput struct {
	Title    string
	Content  string
	ParentID string
}

type DocumentUpdateInput struct {
	Title      *string
	Content    *string
	Icon       *string
	CoverImage *string
	Published  *bool
}

func (s *DocumentService) Create(ctx context.Context, userID string, input DocumentCreateInput) (*model.Document, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, appErr.ErrInvalid
	}
	if input.ParentID != "" {
		if _, err := s.docs.GetByID(ctx, userID, input.ParentID); err != nil {
			return nil, err
		}
	}
	now := time.Now().UnixMilli()
	doc := &model.Document{
		ID:       newID(),
		UserID:   userID,
		Title:    input.Title,
		Content:  input.Content,
		ParentID: input.ParentID,
		Ctime:    now,
		Mtime:    now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	if input.Content != "" {
		s.scheduler.EnqueueReindex(doc.ID, userID)
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, userID, docID string) (*model.Document, error) {
	return s.docs.GetByID(ctx, userID, docID)
}

func (s *DocumentService) ListChildren(ctx context.Context, userID, parentID string) ([]model.Document, error) {
	return s.docs.ListChildren(ctx, userID, parentID)
}

func (s *DocumentService) ListTrash(ctx context.Context, userID string) ([]model.Document, error) {
	return s.docs.ListArchived(ctx, userID)
}

func (s *DocumentService) ListByIDs(ctx context.Context, userID string, ids []string) ([]model.Document, error) {
	return s.docs.ListByIDs(ctx, userID, ids)
}

// Update patches the given fields. A reindex is scheduled only when the
// content field itself was part of the patch; title, icon, cover and
// publish changes leave the index alone.
func (s *DocumentService) Update(ctx context.Context, userID, docID string, input DocumentUpdateInput) error {
	patch := repo.DocumentPatch{
		Title:      input.Title,
		Content:    input.Content,
		Icon:       input.Icon,
		CoverImage: input.CoverImage,
		Published:  input.Published,
		Mtime:      time.Now().UnixMilli(),
	}
	if err := s.docs.Patch(ctx, userID, docID, patch); err != nil {
		return err
	}
	if input.Content != nil {
		s.scheduler.EnqueueReindex(docID, userID)
	}
	return nil
}

// Archive moves a document and all of its descendants to the trash.
func (s *DocumentService) Archive(ctx context.Context, userID, docID string) error {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return err
	}
	return s.archiveTree(ctx, userID, docID)
}

func (s *DocumentService) archiveTree(ctx context.Context, userID, docID string) error {
	children, err := s.docs.ListChildren(ctx, userID, docID)
	if err != nil {
		return err
	}
	if err := s.docs.SetArchived(ctx, userID, docID, true, time.Now().UnixMilli()); err != nil {
		return err
	}
	for _, child := range children {
		if err := s.archiveTree(ctx, userID, child.ID); err != nil {
			return err
		}
	}
	return nil
}

// Restore brings a document back from the trash together with its archived
// descendants. A document whose parent is still archived is re-rooted.
func (s *DocumentService) Restore(ctx context.Context, userID, docID string) error {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return err
	}
	clearParent := false
	if doc.ParentID != "" {
		parent, err := s.docs.GetByID(ctx, userID, doc.ParentID)
		if err == nil && parent.Archived {
			clearParent = true
		}
	}
	return s.restoreTree(ctx, userID, docID, clearParent)
}

func (s *DocumentService) restoreTree(ctx context.Context, userID, docID string, clearParent bool) error {
	if err := s.docs.Restore(ctx, userID, docID, clearParent, time.Now().UnixMilli()); err != nil {
		return err
	}
	children, err := s.docs.ListChildrenArchived(ctx, userID, docID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.restoreTree(ctx, userID, child.ID, false); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the document and its derived chunks for good.
func (s *DocumentService) Delete(ctx context.Context, userID, docID string) error {
	if err := s.docs.Delete(ctx, userID, docID); err != nil {
		return err
	}
	removed, err := s.chunks.DeleteByDocument(ctx, docID)
	if err != nil {
		return err
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("removed chunks of deleted document",
			zap.String("doc_id", docID), zap.Int64("count", removed))
	}
	return nil
}
