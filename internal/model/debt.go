package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DebtStatus string

const (
	DebtPending DebtStatus = "PENDING"
	DebtPartial DebtStatus = "PARTIAL"
	DebtPaid    DebtStatus = "PAID"
)

type DebtPaymentMethod string

const (
	DebtPayCash     DebtPaymentMethod = "CASH"
	DebtPayTransfer DebtPaymentMethod = "TRANSFER"
	DebtPayOther    DebtPaymentMethod = "OTHER"
)

// DebtRecord tracks what is still owed on a DEBT transaction. A cancelled
// transaction leaves its record PAID, meaning closed rather than settled.
type DebtRecord struct {
	BaseModel
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"transaction_id"`
	Transaction   *Transaction    `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
	CustomerName  string          `gorm:"type:varchar(255);index" json:"customer_name"`
	CustomerPhone string          `gorm:"type:varchar(30)" json:"customer_phone,omitempty"`
	TotalDebt     decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"total_debt"`
	PaidAmount    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"paid_amount"`
	RemainingDebt decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"remaining_debt"`
	Status        DebtStatus      `gorm:"type:varchar(10);not null;index" json:"status"`
	DueDate       *time.Time      `json:"due_date,omitempty"`

	Payments []DebtPayment `gorm:"foreignKey:DebtRecordID" json:"payments"`
}

type DebtPayment struct {
	BaseModel
	DebtRecordID uuid.UUID         `gorm:"type:uuid;not null;index" json:"debt_record_id"`
	Amount       decimal.Decimal   `gorm:"type:numeric(15,2);not null" json:"amount"`
	Method       DebtPaymentMethod `gorm:"type:varchar(10);not null" json:"method"`
	Note         string            `gorm:"type:text" json:"note"`
}
