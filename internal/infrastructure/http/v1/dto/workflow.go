package dto

import (
	"time"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/job"
)

// CreateJobsRequest creates one job covering locations of a warehouse.
type CreateJobsRequest struct {
	InventoryID string   `json:"inventoryId" binding:"required"`
	WarehouseID string   `json:"warehouseId" binding:"required"`
	LocationIDs []string `json:"locationIds" binding:"required"`
}

// AssignJobsRequest assigns jobs to a counting pass, optionally with an
// operator session.
type AssignJobsRequest struct {
	JobIDs        []string  `json:"jobIds" binding:"required"`
	CountingOrder int       `json:"countingOrder" binding:"required,min=1"`
	OperatorID    *string   `json:"operatorId"`
	DateStart     time.Time `json:"dateStart" binding:"required"`
}

// MarkReadyRequest promotes jobs to PRET.
type MarkReadyRequest struct {
	JobIDs []string `json:"jobIds" binding:"required"`
}

// LaunchCountingRequest launches the next counting pass for a job/location.
type LaunchCountingRequest struct {
	JobID      string `json:"jobId" binding:"required"`
	LocationID string `json:"locationId" binding:"required"`
	OperatorID string `json:"operatorId" binding:"required"`
}

// ParseIDs parses a list of string identifiers, reporting the offending
// value on failure.
func ParseIDs(field string, values []string) ([]id.ID, error) {
	ids := make([]id.ID, len(values))
	for i, v := range values {
		parsed, err := id.Parse(v)
		if err != nil {
			return nil, apperror.NewValidation("invalid id format").
				WithDetail("field", field).
				WithDetail("value", v)
		}
		ids[i] = parsed
	}
	return ids, nil
}

// JobResponse is the API shape of a job.
type JobResponse struct {
	ID          string `json:"id"`
	Reference   string `json:"reference"`
	InventoryID string `json:"inventoryId"`
	WarehouseID string `json:"warehouseId"`
	Status      string `json:"status"`

	EnAttenteDate *time.Time `json:"enAttenteDate,omitempty"`
	AffecteDate   *time.Time `json:"affecteDate,omitempty"`
	PretDate      *time.Time `json:"pretDate,omitempty"`
	TransfertDate *time.Time `json:"transfertDate,omitempty"`
	EntameDate    *time.Time `json:"entameDate,omitempty"`
	ValideDate    *time.Time `json:"valideDate,omitempty"`
	TermineDate   *time.Time `json:"termineDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromJob creates JobResponse from the entity.
func FromJob(j *job.Job) *JobResponse {
	return &JobResponse{
		ID:            j.ID.String(),
		Reference:     j.Reference,
		InventoryID:   j.InventoryID.String(),
		WarehouseID:   j.WarehouseID.String(),
		Status:        string(j.Status),
		EnAttenteDate: j.EnAttenteDate,
		AffecteDate:   j.AffecteDate,
		PretDate:      j.PretDate,
		TransfertDate: j.TransfertDate,
		EntameDate:    j.EntameDate,
		ValideDate:    j.ValideDate,
		TermineDate:   j.TermineDate,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

// FromJobs maps a batch of jobs.
func FromJobs(jobs []*job.Job) []*JobResponse {
	out := make([]*JobResponse, len(jobs))
	for i, j := range jobs {
		out[i] = FromJob(j)
	}
	return out
}
