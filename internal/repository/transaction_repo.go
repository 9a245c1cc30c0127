package repository

import (
	"time"

	"toko-bangunan-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionQuery struct {
	Page
	Search        string
	PaymentMethod model.PaymentMethod
	Status        model.TransactionStatus
	IsPaid        *bool
	From          *time.Time
	To            *time.Time
	SortBy        string
	SortOrder     string
}

var transactionSortColumns = map[string]string{
	"createdAt":    "created_at",
	"total":        "total_amount",
	"customerName": "customer_name",
}

// TransactionStats summarises sales in a period. Sales totals only count
// active transactions.
type TransactionStats struct {
	TotalCount     int64           `json:"total_transactions"`
	ActiveCount    int64           `json:"active_transactions"`
	CancelledCount int64           `json:"cancelled_transactions"`
	CashCount      int64           `json:"cash_transactions"`
	DebtCount      int64           `json:"debt_transactions"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	CashSales      decimal.Decimal `json:"cash_sales"`
	DebtSales      decimal.Decimal `json:"debt_sales"`
}

type TransactionRepository interface {
	Create(tx *gorm.DB, transaction *model.Transaction) error
	FindByID(id uuid.UUID) (*model.Transaction, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error)
	FindByReceipt(receiptNumber string) (*model.Transaction, error)
	FindAll(q TransactionQuery) ([]model.Transaction, int64, error)
	FindActiveBetween(from, to time.Time) ([]model.Transaction, error)
	MarkCancelled(tx *gorm.DB, id uuid.UUID, reason string, at time.Time, actor string) (bool, error)
	MarkPaid(tx *gorm.DB, id uuid.UUID, paymentAmount decimal.Decimal, actor string) error
	UpdateCustomer(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Stats(from, to time.Time) (*TransactionStats, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func itemsOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// Create inserts the header and its items.
func (r *transactionRepo) Create(tx *gorm.DB, transaction *model.Transaction) error {
	return tx.Omit("DebtRecord").Create(transaction).Error
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.
		Preload("Items", itemsOrder).
		Preload("Items.Product").
		Preload("DebtRecord").
		Preload("DebtRecord.Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// FindForUpdate loads the header, items and debt record inside tx with the
// header row locked where the dialect supports it.
func (r *transactionRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("transaction_id = ?", id).Order("created_at ASC").Find(&transaction.Items).Error; err != nil {
		return nil, err
	}
	var debt model.DebtRecord
	err = tx.Where("transaction_id = ?", id).Limit(1).Find(&debt).Error
	if err != nil {
		return nil, err
	}
	if debt.ID != uuid.Nil {
		transaction.DebtRecord = &debt
	}
	return &transaction, nil
}

func (r *transactionRepo) FindByReceipt(receiptNumber string) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.Select("id").First(&transaction, "receipt_number = ?", receiptNumber).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(transaction.ID)
}

func (r *transactionRepo) FindAll(q TransactionQuery) ([]model.Transaction, int64, error) {
	query := r.db.Model(&model.Transaction{})
	if q.Search != "" {
		p := likePattern(q.Search)
		query = query.Where("LOWER(customer_name) LIKE ? OR LOWER(receipt_number) LIKE ?", p, p)
	}
	if q.PaymentMethod != "" {
		query = query.Where("payment_method = ?", q.PaymentMethod)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.IsPaid != nil {
		query = query.Where("is_paid = ?", *q.IsPaid)
	}
	if q.From != nil {
		query = query.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("created_at < ?", *q.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []model.Transaction
	err := query.
		Preload("Items", itemsOrder).
		Preload("DebtRecord").
		Order(orderBy(q.SortBy, q.SortOrder, transactionSortColumns, "created_at")).
		Scopes(q.Page.scope).
		Find(&transactions).Error
	return transactions, total, err
}

func (r *transactionRepo) FindActiveBetween(from, to time.Time) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.
		Preload("Items", itemsOrder).
		Preload("Items.Product").
		Preload("DebtRecord").
		Where("status = ? AND created_at >= ? AND created_at < ?", model.TxActive, from, to).
		Order("created_at ASC").Order("receipt_number ASC").
		Find(&transactions).Error
	return transactions, err
}

// MarkCancelled flips an ACTIVE transaction to CANCELLED. It reports false
// when the row was no longer ACTIVE.
func (r *transactionRepo) MarkCancelled(tx *gorm.DB, id uuid.UUID, reason string, at time.Time, actor string) (bool, error) {
	res := tx.Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, model.TxActive).
		Updates(map[string]interface{}{
			"status":        model.TxCancelled,
			"cancel_reason": reason,
			"cancelled_at":  at,
			"updated_by":    actor,
		})
	return res.RowsAffected == 1, res.Error
}

// MarkPaid settles the transaction once its debt is cleared.
func (r *transactionRepo) MarkPaid(tx *gorm.DB, id uuid.UUID, paymentAmount decimal.Decimal, actor string) error {
	return tx.Model(&model.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_paid":        true,
			"payment_amount": paymentAmount,
			"change_amount":  decimal.Zero,
			"updated_by":     actor,
		}).Error
}

func (r *transactionRepo) UpdateCustomer(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	return tx.Model(&model.Transaction{}).Where("id = ?", id).Updates(fields).Error
}

func (r *transactionRepo) Stats(from, to time.Time) (*TransactionStats, error) {
	var stats TransactionStats
	err := r.db.Model(&model.Transaction{}).
		Select(`
			COUNT(*) AS total_count,
			COALESCE(SUM(CASE WHEN status = 'ACTIVE' THEN 1 ELSE 0 END), 0) AS active_count,
			COALESCE(SUM(CASE WHEN status = 'CANCELLED' THEN 1 ELSE 0 END), 0) AS cancelled_count,
			COALESCE(SUM(CASE WHEN status = 'ACTIVE' AND payment_method = 'CASH' THEN 1 ELSE 0 END), 0) AS cash_count,
			COALESCE(SUM(CASE WHEN status = 'ACTIVE' AND payment_method = 'DEBT' THEN 1 ELSE 0 END), 0) AS debt_count,
			COALESCE(SUM(CASE WHEN status = 'ACTIVE' THEN total_amount ELSE 0 END), 0) AS total_sales,
			COALESCE(SUM(CASE WHEN status = 'ACTIVE' AND payment_method = 'CASH' THEN total_amount ELSE 0 END), 0) AS cash_sales,
			COALESCE(SUM(CASE WHEN status = 'ACTIVE' AND payment_method = 'DEBT' THEN total_amount ELSE 0 END), 0) AS debt_sales
		`).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
