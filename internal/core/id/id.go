// Package id provides UUID generation and parsing for entity identifiers.
package id

import (
	"github.com/google/uuid"
)

// ID is an alias for uuid.UUID used across all entities.
type ID = uuid.UUID

// Nil is the zero ID.
var Nil = uuid.Nil

// New generates a new UUIDv7 (time-ordered, index-friendly).
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the entropy source is broken; fall back to v4.
		return uuid.New()
	}
	return id
}

// Parse parses an ID from its string form.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse parses an ID and panics on failure. For tests and constants.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}
