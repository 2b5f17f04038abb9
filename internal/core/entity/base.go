package entity

import (
	"time"

	"countflow/internal/core/id"
)

// Base contains common fields for all counting entities.
// Every row carries a UUIDv7 primary key, a human-readable reference,
// a soft-delete mark and audit timestamps.
type Base struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Reference is the human-readable identifier (e.g. "JOB-2026-00042")
	Reference string `db:"reference" json:"reference"`

	// IsDeleted indicates soft-deleted entity
	IsDeleted bool `db:"is_deleted" json:"isDeleted"`

	// Audit timestamps
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBase creates a new Base with generated ID and timestamps.
// The reference is assigned later by the reference generator.
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// MarkDeleted sets the soft-delete mark.
func (b *Base) MarkDeleted() {
	b.IsDeleted = true
	b.Touch()
}
