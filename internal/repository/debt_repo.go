package repository

import (
	"time"

	"toko-bangunan-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DebtQuery struct {
	Page
	Status   model.DebtStatus
	Customer string
	Overdue  bool
	Now      time.Time
}

type DebtSummary struct {
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	OpenCount        int64           `json:"open_debts"`
	CustomerCount    int64           `json:"customers_with_debt"`
	OverdueAmount    decimal.Decimal `json:"overdue_amount"`
	OverdueCount     int64           `json:"overdue_debts"`
}

type DebtRepository interface {
	Create(tx *gorm.DB, debt *model.DebtRecord) error
	FindByID(id uuid.UUID) (*model.DebtRecord, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.DebtRecord, error)
	FindAll(q DebtQuery) ([]model.DebtRecord, int64, error)
	FindByCustomer(name string) ([]model.DebtRecord, error)
	CountPayments(tx *gorm.DB, debtID uuid.UUID) (int64, error)
	ApplyPayment(tx *gorm.DB, debtID uuid.UUID, amount decimal.Decimal, actor string) (bool, error)
	AddPayment(tx *gorm.DB, payment *model.DebtPayment) error
	SetStatus(tx *gorm.DB, debtID uuid.UUID, status model.DebtStatus, actor string) error
	Close(tx *gorm.DB, debtID uuid.UUID, actor string) error
	UpdateCustomer(tx *gorm.DB, transactionID uuid.UUID, fields map[string]interface{}) error
	Summary(now time.Time) (*DebtSummary, error)
	OutstandingBetween(from, to time.Time) (decimal.Decimal, error)
}

type debtRepo struct {
	db *gorm.DB
}

func NewDebtRepo(db *gorm.DB) DebtRepository {
	return &debtRepo{db}
}

func paymentsOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

func (r *debtRepo) Create(tx *gorm.DB, debt *model.DebtRecord) error {
	return tx.Omit("Transaction", "Payments").Create(debt).Error
}

func (r *debtRepo) FindByID(id uuid.UUID) (*model.DebtRecord, error) {
	var debt model.DebtRecord
	err := r.db.
		Preload("Payments", paymentsOrder).
		Preload("Transaction").
		First(&debt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

func (r *debtRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.DebtRecord, error) {
	var debt model.DebtRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&debt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

func (r *debtRepo) filtered(q DebtQuery) *gorm.DB {
	query := r.db.Model(&model.DebtRecord{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Customer != "" {
		query = query.Where("LOWER(customer_name) LIKE ?", likePattern(q.Customer))
	}
	if q.Overdue {
		query = query.Where("status <> ? AND due_date IS NOT NULL AND due_date < ?", model.DebtPaid, q.Now)
	}
	return query
}

func (r *debtRepo) FindAll(q DebtQuery) ([]model.DebtRecord, int64, error) {
	var total int64
	if err := r.filtered(q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var debts []model.DebtRecord
	err := r.filtered(q).
		Preload("Payments", paymentsOrder).
		Preload("Transaction").
		Order("created_at DESC").
		Scopes(q.Page.scope).
		Find(&debts).Error
	return debts, total, err
}

func (r *debtRepo) FindByCustomer(name string) ([]model.DebtRecord, error) {
	var debts []model.DebtRecord
	err := r.db.
		Preload("Payments", paymentsOrder).
		Preload("Transaction").
		Where("LOWER(customer_name) = LOWER(?)", name).
		Order("created_at DESC").
		Find(&debts).Error
	return debts, err
}

func (r *debtRepo) CountPayments(tx *gorm.DB, debtID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&model.DebtPayment{}).Where("debt_record_id = ?", debtID).Count(&count).Error
	return count, err
}

// ApplyPayment moves amount from remaining to paid. It reports false when
// the record no longer has that much outstanding.
func (r *debtRepo) ApplyPayment(tx *gorm.DB, debtID uuid.UUID, amount decimal.Decimal, actor string) (bool, error) {
	res := tx.Model(&model.DebtRecord{}).
		Where("id = ? AND status <> ? AND remaining_debt >= ?", debtID, model.DebtPaid, amount).
		Updates(map[string]interface{}{
			"paid_amount":    gorm.Expr("paid_amount + ?", amount),
			"remaining_debt": gorm.Expr("remaining_debt - ?", amount),
			"updated_by":     actor,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *debtRepo) AddPayment(tx *gorm.DB, payment *model.DebtPayment) error {
	return tx.Create(payment).Error
}

func (r *debtRepo) SetStatus(tx *gorm.DB, debtID uuid.UUID, status model.DebtStatus, actor string) error {
	return tx.Model(&model.DebtRecord{}).
		Where("id = ?", debtID).
		Updates(map[string]interface{}{"status": status, "updated_by": actor}).Error
}

// Close marks the record as no longer owed. Amounts are left untouched so
// the history still shows what was outstanding at cancellation.
func (r *debtRepo) Close(tx *gorm.DB, debtID uuid.UUID, actor string) error {
	return r.SetStatus(tx, debtID, model.DebtPaid, actor)
}

func (r *debtRepo) Summary(now time.Time) (*DebtSummary, error) {
	var summary DebtSummary
	err := r.db.Model(&model.DebtRecord{}).
		Select(`
			COALESCE(SUM(remaining_debt), 0) AS total_outstanding,
			COUNT(*) AS open_count,
			COUNT(DISTINCT LOWER(customer_name)) AS customer_count,
			COALESCE(SUM(CASE WHEN due_date IS NOT NULL AND due_date < ? THEN remaining_debt ELSE 0 END), 0) AS overdue_amount,
			COALESCE(SUM(CASE WHEN due_date IS NOT NULL AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue_count
		`, now, now).
		Where("status <> ?", model.DebtPaid).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *debtRepo) UpdateCustomer(tx *gorm.DB, transactionID uuid.UUID, fields map[string]interface{}) error {
	return tx.Model(&model.DebtRecord{}).Where("transaction_id = ?", transactionID).Updates(fields).Error
}

// OutstandingBetween sums what is still owed on open debts whose sale falls
// in [from, to).
func (r *debtRepo) OutstandingBetween(from, to time.Time) (decimal.Decimal, error) {
	var row struct {
		Outstanding decimal.Decimal
	}
	err := r.db.Model(&model.DebtRecord{}).
		Select("COALESCE(SUM(debt_records.remaining_debt), 0) AS outstanding").
		Joins("JOIN transactions ON transactions.id = debt_records.transaction_id").
		Where("debt_records.status <> ? AND transactions.status = ?", model.DebtPaid, model.TxActive).
		Where("transactions.created_at >= ? AND transactions.created_at < ?", from, to).
		Scan(&row).Error
	return row.Outstanding, err
}
