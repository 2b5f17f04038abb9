// Package inventory provides the Inventory aggregate: a counting campaign
// owning an ordered set of counting passes.
package inventory

import (
	"time"

	"countflow/internal/core/entity"
)

// Status of an inventory campaign. Persisted values are French literals.
// Status only ever advances forward.
type Status string

const (
	StatusEnPreparation Status = "EN PREPARATION"
	StatusEnRealisation Status = "EN REALISATION"
	StatusTermine       Status = "TERMINE"
	StatusCloture       Status = "CLOTURE"
)

var statusRank = map[Status]int{
	StatusEnPreparation: 1,
	StatusEnRealisation: 2,
	StatusTermine:       3,
	StatusCloture:       4,
}

// CanAdvanceTo reports whether moving to target keeps the status monotonic.
func (s Status) CanAdvanceTo(target Status) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[target]
	if !ok {
		return false
	}
	return to > from
}

// Type of an inventory campaign.
type Type string

const (
	TypeGeneral  Type = "GENERAL"
	TypeTournant Type = "TOURNANT"
)

// Inventory is a counting campaign.
type Inventory struct {
	entity.Base

	Label  string    `db:"label" json:"label"`
	Date   time.Time `db:"date" json:"date"`
	Status Status    `db:"status" json:"status"`
	Type   Type      `db:"inventory_type" json:"inventoryType"`

	EnPreparationDate *time.Time `db:"en_preparation_status_date" json:"enPreparationDate,omitempty"`
	EnRealisationDate *time.Time `db:"en_realisation_status_date" json:"enRealisationDate,omitempty"`
	TermineDate       *time.Time `db:"termine_status_date" json:"termineDate,omitempty"`
	ClotureDate       *time.Time `db:"cloture_status_date" json:"clotureDate,omitempty"`
}

// New creates an inventory in EN PREPARATION with its timestamp set.
func New(label string, date time.Time, invType Type) *Inventory {
	inv := &Inventory{
		Base:   entity.NewBase(),
		Label:  label,
		Date:   date,
		Status: StatusEnPreparation,
		Type:   invType,
	}
	now := time.Now().UTC()
	inv.EnPreparationDate = &now
	return inv
}

// MarkEnRealisation advances the inventory to EN REALISATION.
func (inv *Inventory) MarkEnRealisation(at time.Time) {
	inv.Status = StatusEnRealisation
	if inv.EnRealisationDate == nil {
		inv.EnRealisationDate = &at
	}
	inv.Touch()
}

// MarkTermine advances the inventory to TERMINE.
func (inv *Inventory) MarkTermine(at time.Time) {
	inv.Status = StatusTermine
	if inv.TermineDate == nil {
		inv.TermineDate = &at
	}
	inv.Touch()
}
