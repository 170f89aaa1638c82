package service

import (
	"context"
	"strings"
	"time"

	"github.com/notewell/notewell/internal/model"
	appErr "github.com/notewell/notewell/internal/pkg/errors"
	"github.com/notewell/notewell/internal/repo"
)

type DeckService struct {
	decks *repo.DeckRepo
	cards *repo.FlashcardRepo
	rag   *RAGService
}

func NewDeckService(decks *repo.DeckRepo, cards *repo.FlashcardRepo, rag *RAGService) *DeckService {
	return &DeckService{decks: decks, cards: cards, rag: rag}
}

type DeckCreateInput struct {
	Title            string
	Description      string
	SourceDocumentID string
}

func (s *DeckService) Create(ctx context.Context, userID string, input DeckCreateInput) (*model.FlashcardDeck, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, appErr.ErrInvalid
	}
	deck := &model.FlashcardDeck{
		ID:               newID(),
		UserID:           userID,
		Title:            input.Title,
		Description:      input.Description,
		SourceDocumentID: input.SourceDocumentID,
		Ctime:            time.Now().UnixMilli(),
	}
	if err := s.decks.Create(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

func (s *DeckService) List(ctx context.Context, userID string) ([]model.FlashcardDeck, error) {
	return s.decks.ListByUser(ctx, userID)
}

func (s *DeckService) ListCards(ctx context.Context, userID, deckID string) ([]model.Flashcard, error) {
	if _, err := s.decks.GetByID(ctx, userID, deckID); err != nil {
		return nil, err
	}
	return s.cards.ListByDeck(ctx, userID, deckID)
}

// AddCards persists a batch of front/back pairs into an owner-verified
// deck.
func (s *DeckService) AddCards(ctx context.Context, userID, deckID string, pairs []model.FlashcardPair, sourceDocumentID string) (int, error) {
	if _, err := s.decks.GetByID(ctx, userID, deckID); err != nil {
		return 0, err
	}
	now := time.Now().UnixMilli()
	cards := make([]model.Flashcard, 0, len(pairs))
	for _, pair := range pairs {
		cards = append(cards, model.Flashcard{
			DeckID:           deckID,
			UserID:           userID,
			Front:            pair.Front,
			Back:             pair.Back,
			SourceDocumentID: sourceDocumentID,
			Ctime:            now,
		})
	}
	if err := s.cards.InsertBatch(ctx, cards); err != nil {
		return 0, err
	}
	return len(cards), nil
}

// GenerateInto runs flashcard generation on the supplied text and stores
// whatever came back into the deck. An empty result is a valid outcome.
func (s *DeckService) GenerateInto(ctx context.Context, userID, deckID, text, sourceDocumentID string) ([]model.FlashcardPair, error) {
	if _, err := s.decks.GetByID(ctx, userID, deckID); err != nil {
		return nil, err
	}
	pairs, err := s.rag.GenerateFlashcards(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return pairs, nil
	}
	if _, err := s.AddCards(ctx, userID, deckID, pairs, sourceDocumentID); err != nil {
		return nil, err
	}
	return pairs, nil
}

func (s *DeckService) Delete(ctx context.Context, userID, deckID string) error {
	if _, err := s.cards.DeleteByDeck(ctx, userID, deckID); err != nil {
		return err
	}
	return s.decks.Delete(ctx, userID, deckID)
}
