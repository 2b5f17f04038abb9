// Package job provides the Job and JobDetail entities of the counting
// workflow.
package job

import (
	"time"

	"countflow/internal/core/entity"
	"countflow/internal/core/id"
)

// Status of a job. Persisted values are French literals.
type Status string

const (
	StatusEnAttente      Status = "EN ATTENTE"
	StatusAffecte        Status = "AFFECTE"
	StatusPret           Status = "PRET"
	StatusTransfert      Status = "TRANSFERT"
	StatusEntame         Status = "ENTAME"
	StatusValide         Status = "VALIDE"
	StatusTermine        Status = "TERMINE"
	StatusSaisieManuelle Status = "SAISIE MANUELLE"
)

// Terminal reports whether the status ends the job's lifecycle.
// SAISIE MANUELLE is a parallel terminal branch reachable from EN ATTENTE.
func (s Status) Terminal() bool {
	return s == StatusTermine || s == StatusSaisieManuelle
}

// Job is the unit of counting work for one warehouse within one inventory.
type Job struct {
	entity.Base

	InventoryID id.ID  `db:"inventory_id" json:"inventoryId"`
	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`
	Status      Status `db:"status" json:"status"`

	EnAttenteDate      *time.Time `db:"en_attente_date" json:"enAttenteDate,omitempty"`
	AffecteDate        *time.Time `db:"affecte_date" json:"affecteDate,omitempty"`
	PretDate           *time.Time `db:"pret_date" json:"pretDate,omitempty"`
	TransfertDate      *time.Time `db:"transfert_date" json:"transfertDate,omitempty"`
	EntameDate         *time.Time `db:"entame_date" json:"entameDate,omitempty"`
	ValideDate         *time.Time `db:"valide_date" json:"valideDate,omitempty"`
	TermineDate        *time.Time `db:"termine_date" json:"termineDate,omitempty"`
	SaisieManuelleDate *time.Time `db:"saisie_manuelle_date" json:"saisieManuelleDate,omitempty"`
}

// NewJob creates a job in EN ATTENTE with its timestamp set.
func NewJob(inventoryID, warehouseID id.ID) *Job {
	j := &Job{
		Base:        entity.NewBase(),
		InventoryID: inventoryID,
		WarehouseID: warehouseID,
		Status:      StatusEnAttente,
	}
	now := time.Now().UTC()
	j.EnAttenteDate = &now
	return j
}

// MarkAffecte promotes the job to AFFECTE. The timestamp is set once.
func (j *Job) MarkAffecte(at time.Time) {
	j.Status = StatusAffecte
	if j.AffecteDate == nil {
		j.AffecteDate = &at
	}
	j.Touch()
}

// MarkPret promotes the job to PRET. The timestamp is set once, never
// overwritten.
func (j *Job) MarkPret(at time.Time) {
	j.Status = StatusPret
	if j.PretDate == nil {
		j.PretDate = &at
	}
	j.Touch()
}

// DetailStatus of a job detail row.
type DetailStatus string

const (
	DetailStatusEnAttente DetailStatus = "EN ATTENTE"
	DetailStatusTermine   DetailStatus = "TERMINE"
)

// Detail records per-location progress of a job for one counting pass.
// A detail is created when the job is created for its initial pass(es) and
// again by the sequencer when a new pass is launched for the location.
type Detail struct {
	entity.Base

	JobID      id.ID        `db:"job_id" json:"jobId"`
	LocationID id.ID        `db:"location_id" json:"locationId"`
	CountingID id.ID        `db:"counting_id" json:"countingId"`
	Status     DetailStatus `db:"status" json:"status"`
}

// NewDetail creates a job detail in EN ATTENTE.
func NewDetail(jobID, locationID, countingID id.ID) *Detail {
	return &Detail{
		Base:       entity.NewBase(),
		JobID:      jobID,
		LocationID: locationID,
		CountingID: countingID,
		Status:     DetailStatusEnAttente,
	}
}
