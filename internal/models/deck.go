// Package models defines the domain types for Ansuz.
package models

import "time"

// Deck describes one generated presentation.
type Deck struct {
	Filename   string    `json:"filename"`
	Title      string    `json:"title"`
	Provider   string    `json:"provider"`
	SlideCount int       `json:"slide_count"`
	Checksum   string    `json:"checksum"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeckMetadata is a lightweight representation returned by store listings.
type DeckMetadata struct {
	Filename  string    `json:"filename"`
	Checksum  string    `json:"checksum"`
	SizeBytes int64     `json:"size_bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}
