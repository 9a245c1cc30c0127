package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

type MovementReference string

const (
	RefInitial      MovementReference = "INITIAL"
	RefManual       MovementReference = "MANUAL"
	RefSale         MovementReference = "SALE"
	RefCancellation MovementReference = "CANCELLATION"
)

// StockMovement is an append-only audit row. Quantity is signed and in base units:
// negative for outflow, positive for inflow.
type StockMovement struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key;" json:"id"`
	ProductID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       *Product          `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Type          MovementType      `gorm:"type:varchar(20);not null;index" json:"type"`
	Quantity      decimal.Decimal   `gorm:"type:numeric(15,3);not null" json:"quantity"`
	StockBefore   decimal.Decimal   `gorm:"type:numeric(15,3);not null" json:"stock_before"`
	StockAfter    decimal.Decimal   `gorm:"type:numeric(15,3);not null" json:"stock_after"`
	ReferenceID   *uuid.UUID        `gorm:"type:uuid;index" json:"reference_id,omitempty"`
	ReferenceType MovementReference `gorm:"type:varchar(20)" json:"reference_type,omitempty"`
	Note          string            `gorm:"type:text" json:"note"`
	CreatedBy     string            `json:"created_by,omitempty"`
	CreatedAt     time.Time         `gorm:"index" json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
