package entity

import (
	"time"

	"github.com/tilemart/tilemart-api/internal/domain/units"
)

// Damaged inventory dispositions.
const (
	DamagedStatusPending  = "pending"
	DamagedStatusDisposed = "disposed"
	DamagedStatusRepaired = "repaired"
	DamagedStatusReturned = "returned"
)

// DamagedInventory is one physical damaged-item record, created alongside
// the ledger entry for shop and customer damage scenarios. Only its
// disposition status changes afterwards.
type DamagedInventory struct {
	ID         string
	ProductID  string
	Quantity   units.Quantity
	DamageType string // shop | customer
	Date       time.Time

	Status      string
	Notes       string
	Description string
	RecordedBy  string

	CreatedAt time.Time
	UpdatedAt time.Time
}
