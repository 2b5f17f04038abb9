// Package assignment provides the Assignment entity binding a job to a
// counting pass and, optionally, an operator session.
package assignment

import (
	"time"

	"countflow/internal/core/entity"
	"countflow/internal/core/id"
)

// Status of an assignment. Persisted values are French literals.
type Status string

const (
	StatusEnAttente Status = "EN ATTENTE"
	StatusAffecte   Status = "AFFECTE"
	StatusPret      Status = "PRET"
	StatusTransfert Status = "TRANSFERT"
	StatusEntame    Status = "ENTAME"
	StatusTermine   Status = "TERMINE"
)

// Assignment binds a job to one counting pass. The operator is nil for
// passes whose mode needs no physical session. Exactly one assignment
// exists per (job, counting) pair, enforced by a unique constraint.
type Assignment struct {
	entity.Base

	JobID      id.ID  `db:"job_id" json:"jobId"`
	CountingID id.ID  `db:"counting_id" json:"countingId"`
	OperatorID *id.ID `db:"operator_id" json:"operatorId,omitempty"`
	Status     Status `db:"status" json:"status"`

	DateStart     *time.Time `db:"date_start" json:"dateStart,omitempty"`
	AffecteDate   *time.Time `db:"affecte_date" json:"affecteDate,omitempty"`
	PretDate      *time.Time `db:"pret_date" json:"pretDate,omitempty"`
	TransfertDate *time.Time `db:"transfert_date" json:"transfertDate,omitempty"`
	EntameDate    *time.Time `db:"entame_date" json:"entameDate,omitempty"`
	TermineDate   *time.Time `db:"termine_date" json:"termineDate,omitempty"`
}

// New creates an assignment in EN ATTENTE without an operator.
func New(jobID, countingID id.ID) *Assignment {
	return &Assignment{
		Base:       entity.NewBase(),
		JobID:      jobID,
		CountingID: countingID,
		Status:     StatusEnAttente,
	}
}

// MarkAffecte promotes the assignment to AFFECTE. Timestamp set once.
func (a *Assignment) MarkAffecte(at time.Time) {
	a.Status = StatusAffecte
	if a.AffecteDate == nil {
		a.AffecteDate = &at
	}
	a.Touch()
}

// MarkPret promotes the assignment to PRET. Timestamp set once.
func (a *Assignment) MarkPret(at time.Time) {
	a.Status = StatusPret
	if a.PretDate == nil {
		a.PretDate = &at
	}
	a.Touch()
}

// Activate stamps the assignment for immediate execution: TRANSFERT with
// the full timestamp trail filled in. Used by the counting sequencer where
// the operator begins work right away.
func (a *Assignment) Activate(operatorID id.ID, at time.Time) {
	a.OperatorID = &operatorID
	a.Status = StatusTransfert
	a.DateStart = &at
	a.AffecteDate = &at
	a.PretDate = &at
	a.TransfertDate = &at
	a.Touch()
}
