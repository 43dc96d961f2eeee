// Package storage defines the deck store file-system abstraction.
package storage

import "github.com/starford/ansuz/internal/models"

// Provider is the interface for deck store file operations. All paths are
// relative to the store root.
type Provider interface {
	// List returns metadata for every .pptx file in the store.
	List() ([]models.DeckMetadata, error)
	// Read returns the raw bytes of the deck at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the deck at path.
	Delete(path string) error
}
