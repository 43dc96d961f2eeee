package api

import "github.com/starford/ansuz/internal/models"

// GenerateResponse is the JSON body returned when the caller asks for
// metadata instead of the deck byte stream.
type GenerateResponse struct {
	RequestID  string `json:"request_id"`
	Filename   string `json:"filename"`
	Title      string `json:"title"`
	Provider   string `json:"provider"`
	SlideCount int    `json:"slide_count"`
	Checksum   string `json:"checksum"`
	SizeBytes  int    `json:"size_bytes"`
}

// DeckListResponse wraps deck store listings.
type DeckListResponse struct {
	Decks []models.DeckMetadata `json:"decks"`
	Total int                   `json:"total"`
}

// HistoryResponse wraps generation history listings.
type HistoryResponse struct {
	Decks []models.Deck `json:"decks"`
	Total int           `json:"total"`
}
