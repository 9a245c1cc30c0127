package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentDebt PaymentMethod = "DEBT"
)

type TransactionStatus string

const (
	TxActive    TransactionStatus = "ACTIVE"
	TxCancelled TransactionStatus = "CANCELLED"
)

type Transaction struct {
	BaseModel
	ReceiptNumber   string            `gorm:"type:varchar(32);uniqueIndex;not null" json:"receipt_number"`
	CustomerName    string            `gorm:"type:varchar(255);index" json:"customer_name"`
	CustomerPhone   string            `gorm:"type:varchar(30)" json:"customer_phone,omitempty"`
	CustomerAddress string            `gorm:"type:text" json:"customer_address,omitempty"`
	PaymentMethod   PaymentMethod     `gorm:"type:varchar(10);not null" json:"payment_method"`
	TotalAmount     decimal.Decimal   `gorm:"type:numeric(15,2);not null" json:"total_amount"`
	PaymentAmount   decimal.Decimal   `gorm:"type:numeric(15,2);not null" json:"payment_amount"`
	ChangeAmount    decimal.Decimal   `gorm:"type:numeric(15,2);not null;default:0" json:"change_amount"`
	IsPaid          bool              `gorm:"not null;default:false;index" json:"is_paid"`
	Status          TransactionStatus `gorm:"type:varchar(12);not null;default:'ACTIVE';index" json:"status"`
	CancelReason    string            `gorm:"type:text" json:"cancel_reason,omitempty"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`

	Items      []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`
	DebtRecord *DebtRecord       `gorm:"foreignKey:TransactionID" json:"debt_record,omitempty"`

	// Derived on read.
	ItemCount     int             `gorm:"-" json:"item_count"`
	RemainingDebt decimal.Decimal `gorm:"-" json:"remaining_debt"`
	IsFullyPaid   bool            `gorm:"-" json:"is_fully_paid"`
}

func (t *Transaction) IsCancelled() bool {
	return t.Status == TxCancelled
}

// TransactionItem snapshots the unit as it was at sale time so later edits to
// the product's units never change what a cancellation restores.
type TransactionItem struct {
	BaseModel
	TransactionID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product        *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	UnitID         uuid.UUID       `gorm:"type:uuid" json:"unit_id"`
	UnitName       string          `gorm:"type:varchar(30);not null" json:"unit_name"`
	ConversionRate decimal.Decimal `gorm:"type:numeric(15,6);not null" json:"conversion_rate"`
	Quantity       decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"quantity"`
	BaseQuantity   decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"base_quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"unit_price"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"subtotal"`
}

// ReceiptCounter holds the last receipt sequence issued for one UTC day.
type ReceiptCounter struct {
	Day       string `gorm:"type:varchar(8);primaryKey"`
	LastValue int64  `gorm:"not null;default:0"`
}
