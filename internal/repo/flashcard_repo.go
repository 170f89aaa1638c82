package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/notewell/notewell/internal/model"
	"github.com/notewell/notewell/internal/pkg/dbutil"
)

type FlashcardRepo struct {
	db *sql.DB
}

func NewFlashcardRepo(db *sql.DB) *FlashcardRepo {
	return &FlashcardRepo{db: db}
}

func (r *FlashcardRepo) InsertBatch(ctx context.Context, cards []model.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(cards))
	for _, card := range cards {
		data = append(data, map[string]interface{}{
			"deck_id":            card.DeckID,
			"user_id":            card.UserID,
			"front":              card.Front,
			"back":               card.Back,
			"source_document_id": card.SourceDocumentID,
			"ctime":              card.Ctime,
		})
	}
	sqlStr, args, err := builder.BuildInsert("flashcards", data)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *FlashcardRepo) ListByDeck(ctx context.Context, userID, deckID string) ([]model.Flashcard, error) {
	where := map[string]interface{}{
		"deck_id":  deckID,
		"user_id":  userID,
		"_orderby": "id asc",
	}
	sqlStr, args, err := builder.BuildSelect("flashcards", where, []string{"id", "deck_id", "user_id", "front", "back", "source_document_id", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cards := make([]model.Flashcard, 0)
	for rows.Next() {
		var card model.Flashcard
		if err := rows.Scan(&card.ID, &card.DeckID, &card.UserID, &card.Front, &card.Back, &card.SourceDocumentID, &card.Ctime); err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (r *FlashcardRepo) DeleteByDeck(ctx context.Context, userID, deckID string) (int64, error) {
	sqlStr, args, err := builder.BuildDelete("flashcards", map[string]interface{}{
		"deck_id": deckID,
		"user_id": userID,
	})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
