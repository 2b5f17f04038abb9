// Package ecart provides discrepancy reconciliation: when counting passes
// disagree for a location/product, an EcartComptage aggregates the trail of
// recorded quantities and manages the accept/resolve workflow.
package ecart

import (
	"time"

	"countflow/internal/core/entity"
	"countflow/internal/core/id"
)

// StoppedReasonManual marks a discrepancy resolved by hand.
const StoppedReasonManual = "RESOLU_MANUEL"

// EcartComptage aggregates the reconciliation trail for one location and
// product across passes. Never destroyed; soft lifecycle only.
type EcartComptage struct {
	entity.Base

	InventoryID id.ID  `db:"inventory_id" json:"inventoryId"`
	LocationID  id.ID  `db:"location_id" json:"locationId"`
	ProductID   *id.ID `db:"product_id" json:"productId,omitempty"`

	TotalSequences  int    `db:"total_sequences" json:"totalSequences"`
	StoppedSequence int    `db:"stopped_sequence" json:"stoppedSequence"`
	FinalResult     *int64 `db:"final_result" json:"finalResult,omitempty"`

	Resolved      bool       `db:"resolved" json:"resolved"`
	StoppedReason string     `db:"stopped_reason" json:"stoppedReason,omitempty"`
	Justification string     `db:"justification" json:"justification,omitempty"`
	ResolvedAt    *time.Time `db:"resolved_at" json:"resolvedAt,omitempty"`
}

// Sequence is one pass's contribution to the reconciliation trail.
// SequenceNumber matches the counting pass order; EcartWithPrevious is the
// delta against the previous sequence, nil for the first one.
type Sequence struct {
	entity.Base

	EcartComptageID   id.ID  `db:"ecart_comptage_id" json:"ecartComptageId"`
	CountingDetailID  id.ID  `db:"counting_detail_id" json:"countingDetailId"`
	SequenceNumber    int    `db:"sequence_number" json:"sequenceNumber"`
	Quantity          int64  `db:"quantity" json:"quantity"`
	EcartWithPrevious *int64 `db:"ecart_with_previous" json:"ecartWithPrevious,omitempty"`
}
