// Package counting provides counting pass definitions and the mode rule
// table shared by the workflow components.
package counting

import (
	"countflow/internal/core/entity"
	"countflow/internal/core/id"
)

// CountMode is the execution style of a counting pass.
// Persisted values are French literals and must not be changed.
type CountMode string

const (
	ModeEnVrac       CountMode = "en vrac"
	ModeParArticle   CountMode = "par article"
	ModeImageDeStock CountMode = "image de stock"
)

// Valid reports whether the mode is a known persisted value.
func (m CountMode) Valid() bool {
	switch m {
	case ModeEnVrac, ModeParArticle, ModeImageDeStock:
		return true
	}
	return false
}

// Flags groups the boolean execution options of a counting pass.
type Flags struct {
	UnitScanned    bool `db:"unit_scanned" json:"unitScanned"`
	EntryQuantity  bool `db:"entry_quantity" json:"entryQuantity"`
	IsVariant      bool `db:"is_variant" json:"isVariant"`
	NLot           bool `db:"n_lot" json:"nLot"`
	NSerie         bool `db:"n_serie" json:"nSerie"`
	DLC            bool `db:"dlc" json:"dlc"`
	ShowProduct    bool `db:"show_product" json:"showProduct"`
	StockSituation bool `db:"stock_situation" json:"stockSituation"`
	QuantityShow   bool `db:"quantity_show" json:"quantityShow"`
}

// flagLabels maps each flag to the label used in validation messages.
var flagLabels = []struct {
	label string
	get   func(Flags) bool
}{
	{"Unité scannée", func(f Flags) bool { return f.UnitScanned }},
	{"Saisie quantité", func(f Flags) bool { return f.EntryQuantity }},
	{"Variante", func(f Flags) bool { return f.IsVariant }},
	{"N° lot", func(f Flags) bool { return f.NLot }},
	{"N° série", func(f Flags) bool { return f.NSerie }},
	{"DLC", func(f Flags) bool { return f.DLC }},
	{"Afficher le produit", func(f Flags) bool { return f.ShowProduct }},
	{"Situation de stock", func(f Flags) bool { return f.StockSituation }},
	{"Afficher la quantité", func(f Flags) bool { return f.QuantityShow }},
}

// FirstMismatch returns the label of the first flag that differs between
// the two sets, or "" when they are identical.
func FirstMismatch(a, b Flags) string {
	for _, fl := range flagLabels {
		if fl.get(a) != fl.get(b) {
			return fl.label
		}
	}
	return ""
}

// Counting is one ordered pass definition within an inventory.
// Orders are gapless from 1 and allocated by the repository inside the
// inserting transaction. Countings are only ever appended.
type Counting struct {
	entity.Base

	InventoryID id.ID     `db:"inventory_id" json:"inventoryId"`
	Order       int       `db:"count_order" json:"order"`
	CountMode   CountMode `db:"count_mode" json:"countMode"`
	Flags
}

// NewCounting creates a counting pass for an inventory. The order must come
// from Repository.NextOrder in the same transaction that persists it.
func NewCounting(inventoryID id.ID, order int, mode CountMode, flags Flags) *Counting {
	return &Counting{
		Base:        entity.NewBase(),
		InventoryID: inventoryID,
		Order:       order,
		CountMode:   mode,
		Flags:       flags,
	}
}

// Detail is one recorded quantity for a (counting, location, product)
// combination. Details are produced by pass execution outside this engine;
// only their quantity and ordering are read here.
type Detail struct {
	entity.Base

	CountingID          id.ID  `db:"counting_id" json:"countingId"`
	JobID               id.ID  `db:"job_id" json:"jobId"`
	LocationID          id.ID  `db:"location_id" json:"locationId"`
	ProductID           *id.ID `db:"product_id" json:"productId,omitempty"`
	QuantityInventoried int64  `db:"quantity_inventoried" json:"quantityInventoried"`
}
