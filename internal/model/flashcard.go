package model

type FlashcardDeck struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	SourceDocumentID string `json:"source_document_id"`
	Ctime            int64  `json:"ctime"`
}

type Flashcard struct {
	ID               int64  `json:"id"`
	DeckID           string `json:"deck_id"`
	UserID           string `json:"user_id"`
	Front            string `json:"front"`
	Back             string `json:"back"`
	SourceDocumentID string `json:"source_document_id"`
	Ctime            int64  `json:"ctime"`
}

// FlashcardPair is the ephemeral generation result before it is persisted
// into a deck.
type FlashcardPair struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}
