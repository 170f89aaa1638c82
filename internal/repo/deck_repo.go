package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/notewell/notewell/internal/model"
	"github.com/notewell/notewell/internal/pkg/dbutil"
	appErr "github.com/notewell/notewell/internal/pkg/errors"
)

var deckFields = []string{"id", "user_id", "title", "description", "source_document_id", "ctime"}

type DeckRepo struct {
	db *sql.DB
}

func NewDeckRepo(db *sql.DB) *DeckRepo {
	return &DeckRepo{db: db}
}

func (r *DeckRepo) Create(ctx context.Context, deck *model.FlashcardDeck) error {
	data := map[string]interface{}{
		"id":                 deck.ID,
		"user_id":            deck.UserID,
		"title":              deck.Title,
		"description":        deck.Description,
		"source_document_id": deck.SourceDocumentID,
		"ctime":              deck.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("flashcard_decks", []map[string]interface{}{data})
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

func (r *DeckRepo) GetByID(ctx context.Context, userID, deckID string) (*model.FlashcardDeck, error) {
	where := map[string]interface{}{
		"id":      deckID,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildSelect("flashcard_decks", where, deckFields)
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
	var deck model.FlashcardDeck
	if err := rows.Scan(&deck.ID, &deck.UserID, &deck.Title, &deck.Description, &deck.SourceDocumentID, &deck.Ctime); err != nil {
		return nil, err
	}
	return &deck, nil
}

func (r *DeckRepo) ListByUser(ctx context.Context, userID string) ([]model.FlashcardDeck, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc",
	}
	sqlStr, args, err := builder.BuildSelect("flashcard_decks", where, deckFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	decks := make([]model.FlashcardDeck, 0)
	for rows.Next() {
		var deck model.FlashcardDeck
		if err := rows.Scan(&deck.ID, &deck.UserID, &deck.Title, &deck.Description, &deck.SourceDocumentID, &deck.Ctime); err != nil {
			return nil, err
		}
		decks = append(decks, deck)
	}
	return decks, rows.Err()
}

func (r *DeckRepo) Delete(ctx context.Context, userID, deckID string) error {
	sqlStr, args, err := builder.BuildDelete("flashcard_decks", map[string]interface{}{
		"id":      deckID,
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
