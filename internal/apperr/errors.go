// Package apperr defines sentinel errors shared across service layers.
package apperr

import "errors"

var (
	// ErrNotFound signals a missing deck or history entry.
	ErrNotFound = errors.New("not found")
	// ErrMalformedOutline signals that the model response did not contain a
	// usable slide outline.
	ErrMalformedOutline = errors.New("malformed outline")
	// ErrProviderAuth signals a rejected or missing provider API key.
	ErrProviderAuth = errors.New("provider authentication failed")
	// ErrProviderQuota signals provider rate or quota exhaustion.
	ErrProviderQuota = errors.New("provider quota exceeded")
	// ErrEmission signals that deck serialization rejected a directive.
	ErrEmission = errors.New("deck emission failed")
)
