package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/stock"
	"toko-bangunan-pos/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// priceTolerance is how far a line's price may drift from the unit's list
// price before a warning is logged.
var priceTolerance = decimal.RequireFromString("0.01")

type SaleItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	UnitName  string          `json:"unit_name" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	Price     decimal.Decimal `json:"price" validate:"gt=0"`
	Subtotal  decimal.Decimal `json:"subtotal" validate:"gt=0"`
}

type CreateTransactionRequest struct {
	CustomerName    string              `json:"customer_name" validate:"required,max=255"`
	CustomerPhone   string              `json:"customer_phone" validate:"max=30"`
	CustomerAddress string              `json:"customer_address"`
	PaymentMethod   model.PaymentMethod `json:"payment_method" validate:"required,oneof=CASH DEBT"`
	PaidAmount      decimal.Decimal     `json:"paid_amount" validate:"gte=0"`
	DueDate         *time.Time          `json:"due_date"`
	Notes           string              `json:"notes"`
	Items           []SaleItemRequest   `json:"items" validate:"required,min=1,dive"`
}

type UpdateTransactionRequest struct {
	CustomerName    *string `json:"customer_name" validate:"omitempty,min=1,max=255"`
	CustomerPhone   *string `json:"customer_phone" validate:"omitempty,max=30"`
	CustomerAddress *string `json:"customer_address"`
	Notes           *string `json:"notes"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type PaymentRequest struct {
	Amount decimal.Decimal         `json:"amount" validate:"gt=0"`
	Method model.DebtPaymentMethod `json:"payment_method" validate:"omitempty,oneof=CASH TRANSFER OTHER"`
	Note   string                  `json:"notes"`
}

type PaymentResult struct {
	Payment     *model.DebtPayment `json:"payment"`
	DebtRecord  *model.DebtRecord  `json:"debt_record"`
	Transaction *model.Transaction `json:"transaction"`
}

type TransactionList struct {
	Transactions []model.Transaction `json:"transactions"`
	Pagination   Pagination          `json:"pagination"`
}

type SalesStats struct {
	repository.TransactionStats
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
}

type DailySales struct {
	Date         string              `json:"date"`
	Transactions []model.Transaction `json:"transactions"`
	Stats        *SalesStats         `json:"stats"`
}

type TransactionService interface {
	Create(req *CreateTransactionRequest, actor Actor) (*model.Transaction, error)
	Cancel(id uuid.UUID, req *CancelRequest, actor Actor) (*model.Transaction, error)
	AddPayment(id uuid.UUID, req *PaymentRequest, actor Actor) (*PaymentResult, error)
	Update(id uuid.UUID, req *UpdateTransactionRequest, actor Actor) (*model.Transaction, error)
	Get(id uuid.UUID) (*model.Transaction, error)
	GetByReceipt(receiptNumber string) (*model.Transaction, error)
	List(q repository.TransactionQuery) (*TransactionList, error)
	Stats(from, to time.Time) (*SalesStats, error)
	DailySales(date time.Time) (*DailySales, error)
}

type transactionService struct {
	txRepo      repository.TransactionRepository
	productRepo repository.ProductRepository
	debtRepo    repository.DebtRepository
	receiptRepo repository.ReceiptRepository
	db          *gorm.DB
	wsHub       *ws.Hub
	log         *logrus.Logger
	loc         *time.Location
	now         func() time.Time
}

func NewTransactionService(
	txRepo repository.TransactionRepository,
	pRepo repository.ProductRepository,
	dRepo repository.DebtRepository,
	rRepo repository.ReceiptRepository,
	db *gorm.DB,
	hub *ws.Hub,
	log *logrus.Logger,
	loc *time.Location,
) TransactionService {
	if loc == nil {
		loc = time.UTC
	}
	return &transactionService{
		txRepo:      txRepo,
		productRepo: pRepo,
		debtRepo:    dRepo,
		receiptRepo: rRepo,
		db:          db,
		wsHub:       hub,
		log:         log,
		loc:         loc,
		now:         time.Now,
	}
}

// ReceiptNumber formats the receipt for the n-th sale of the UTC day of t.
func ReceiptNumber(t time.Time, n int64) string {
	return fmt.Sprintf("TXN-%s-%06d", t.UTC().Format("20060102"), n)
}

// saleLine is an item resolved against the product catalog.
type saleLine struct {
	req     SaleItemRequest
	product *model.Product
	unit    model.ProductUnit
	base    decimal.Decimal
}

func (s *transactionService) Create(req *CreateTransactionRequest, actor Actor) (*model.Transaction, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range req.Items {
		total = total.Add(item.Subtotal)
	}
	total = total.Round(2)
	paid := req.PaidAmount.Round(2)

	if req.PaymentMethod == model.PaymentCash && paid.LessThan(total) {
		return nil, apperror.InvalidPayment("cash payment %s is less than total %s", paid.String(), total.String())
	}

	now := s.now()
	transaction := &model.Transaction{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalAmount:     total,
		PaymentAmount:   paid,
		ChangeAmount:    decimal.Zero,
		IsPaid:          req.PaymentMethod == model.PaymentCash,
		Status:          model.TxActive,
		Notes:           req.Notes,
	}
	transaction.ID = uuid.New()
	transaction.CreatedAt = now
	transaction.CreatedBy = actor.ID
	transaction.UpdatedBy = actor.ID
	if req.PaymentMethod == model.PaymentCash {
		transaction.ChangeAmount = paid.Sub(total)
	}

	var lines []saleLine
	var touched []*model.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 1. Resolve every line and check stock before touching anything.
		// Lines for the same product draw on what earlier lines left.
		products := make(map[uuid.UUID]*model.Product)
		remaining := make(map[uuid.UUID]decimal.Decimal)
		for _, item := range req.Items {
			product, ok := products[item.ProductID]
			if !ok {
				p, err := s.productRepo.FindWithUnits(tx, item.ProductID)
				if err != nil {
					return lookupErr(err, fmt.Sprintf("product %s", item.ProductID))
				}
				product = p
				products[item.ProductID] = p
				remaining[p.ID] = p.Stock
				touched = append(touched, p)
			}
			unit, ok := product.UnitByName(item.UnitName)
			if !ok {
				return apperror.NotFound("unit %q not found for product %s", item.UnitName, product.Name)
			}

			base := stock.ToBaseQuantity(item.Quantity, *unit)
			if base.IsZero() {
				return apperror.InvalidState("%s %s of %s is below the smallest stock step of 0.001 %s",
					item.Quantity.String(), unit.Name, product.Name, product.BaseUnit)
			}
			if !stock.HasSufficientStock(remaining[product.ID], item.Quantity, *unit) {
				return apperror.InsufficientStock("insufficient stock for %s: available %s %s, needed %s %s",
					product.Name, remaining[product.ID].String(), product.BaseUnit, base.String(), product.BaseUnit)
			}
			remaining[product.ID] = remaining[product.ID].Sub(base)
			s.checkPrice(product, unit, item)
			lines = append(lines, saleLine{req: item, product: product, unit: *unit, base: base})
		}

		// 2. Receipt number from the per-day counter.
		day := now.UTC().Format("20060102")
		seq, err := s.receiptRepo.Next(tx, day)
		if err != nil {
			return apperror.Internal(err, "failed to allocate receipt number")
		}
		transaction.ReceiptNumber = ReceiptNumber(now, seq)

		// 3. Header and snapshotted items.
		for _, l := range lines {
			item := model.TransactionItem{
				TransactionID:  transaction.ID,
				ProductID:      l.product.ID,
				UnitID:         l.unit.ID,
				UnitName:       l.unit.Name,
				ConversionRate: l.unit.ConversionRate,
				Quantity:       l.req.Quantity,
				BaseQuantity:   l.base,
				UnitPrice:      l.req.Price.Round(2),
				Subtotal:       l.req.Subtotal.Round(2),
			}
			item.CreatedAt = now
			item.CreatedBy = actor.ID
			transaction.Items = append(transaction.Items, item)
		}
		if err := s.txRepo.Create(tx, transaction); err != nil {
			return storeErr(err, "failed to create transaction")
		}

		// 4. One OUT movement per line. A refused outflow means a concurrent
		// sale got there first.
		for _, l := range lines {
			_, err := stock.Adjust(tx, stock.Entry{
				ProductID:     l.product.ID,
				Delta:         l.base.Neg(),
				Type:          model.MovementOut,
				ReferenceID:   &transaction.ID,
				ReferenceType: model.RefSale,
				Note:          fmt.Sprintf("Sale %s: %s %s", transaction.ReceiptNumber, l.req.Quantity.String(), l.unit.Name),
				Actor:         actor.ID,
			})
			if errors.Is(err, stock.ErrNegative) {
				return apperror.InsufficientStock("insufficient stock for %s", l.product.Name)
			}
			if err != nil {
				return err
			}
		}

		// 5. Debt record for credit sales.
		if req.PaymentMethod != model.PaymentDebt {
			return nil
		}
		debt := &model.DebtRecord{
			TransactionID: transaction.ID,
			CustomerName:  transaction.CustomerName,
			CustomerPhone: transaction.CustomerPhone,
			TotalDebt:     total,
			PaidAmount:    decimal.Min(paid, total),
			RemainingDebt: decimal.Max(total.Sub(paid), decimal.Zero),
			Status:        model.DebtPending,
			DueDate:       req.DueDate,
		}
		if paid.GreaterThanOrEqual(total) {
			debt.Status = model.DebtPaid
		}
		debt.CreatedAt = now
		debt.CreatedBy = actor.ID
		if err := s.debtRepo.Create(tx, debt); err != nil {
			return storeErr(err, "failed to create debt record")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"receipt": transaction.ReceiptNumber,
		"method":  transaction.PaymentMethod,
		"total":   total.String(),
		"items":   len(lines),
		"user":    actor.Name,
	}).Info("transaction created")

	created, err := s.Get(transaction.ID)
	if err != nil {
		return nil, err
	}
	s.publishSale(ws.EventTransactionCreated, created, actor,
		fmt.Sprintf("%s recorded sale %s (%s)", actor.Name, created.ReceiptNumber, total.String()))
	s.publishStock(touched)
	return created, nil
}

// checkPrice logs lines whose price or subtotal drifted from the catalog.
// It never blocks the sale.
func (s *transactionService) checkPrice(product *model.Product, unit *model.ProductUnit, item SaleItemRequest) {
	if item.Price.Sub(unit.Price).Abs().GreaterThan(priceTolerance) {
		s.log.WithFields(logrus.Fields{
			"sku":         product.SKU,
			"unit":        unit.Name,
			"list_price":  unit.Price.String(),
			"given_price": item.Price.String(),
		}).Warn("sale price differs from unit price")
	}
	if item.Quantity.Mul(item.Price).Sub(item.Subtotal).Abs().GreaterThan(priceTolerance) {
		s.log.WithFields(logrus.Fields{
			"sku":      product.SKU,
			"unit":     unit.Name,
			"subtotal": item.Subtotal.String(),
			"expected": item.Quantity.Mul(item.Price).String(),
		}).Warn("sale subtotal differs from quantity x price")
	}
}

func (s *transactionService) Cancel(id uuid.UUID, req *CancelRequest, actor Actor) (*model.Transaction, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var touched []*model.Product
	var receipt string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		transaction, err := s.txRepo.FindForUpdate(tx, id)
		if err != nil {
			return lookupErr(err, "transaction")
		}
		receipt = transaction.ReceiptNumber
		if transaction.IsCancelled() {
			return apperror.New(apperror.KindAlreadyCancelled, "transaction %s is already cancelled", receipt)
		}
		if transaction.DebtRecord != nil {
			payments, err := s.debtRepo.CountPayments(tx, transaction.DebtRecord.ID)
			if err != nil {
				return apperror.Internal(err, "failed to check debt payments")
			}
			if payments > 0 {
				return apperror.New(apperror.KindHasPayments,
					"transaction %s has %d debt payments and cannot be cancelled", receipt, payments)
			}
		}

		// Restore from the snapshot taken at sale time.
		for _, item := range transaction.Items {
			res, err := stock.Adjust(tx, stock.Entry{
				ProductID:     item.ProductID,
				Delta:         item.BaseQuantity,
				Type:          model.MovementIn,
				ReferenceID:   &transaction.ID,
				ReferenceType: model.RefCancellation,
				Note:          fmt.Sprintf("Cancel %s: %s", receipt, req.Reason),
				Actor:         actor.ID,
			})
			if err != nil {
				return err
			}
			touched = append(touched, res.Product)
		}

		if transaction.DebtRecord != nil {
			if err := s.debtRepo.Close(tx, transaction.DebtRecord.ID, actor.ID); err != nil {
				return apperror.Internal(err, "failed to close debt record")
			}
		}

		ok, err := s.txRepo.MarkCancelled(tx, id, req.Reason, s.now(), actor.ID)
		if err != nil {
			return apperror.Internal(err, "failed to cancel transaction")
		}
		if !ok {
			return apperror.New(apperror.KindAlreadyCancelled, "transaction %s is already cancelled", receipt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"receipt": receipt, "reason": req.Reason, "user": actor.Name}).Info("transaction cancelled")

	cancelled, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.publishSale(ws.EventTransactionCancelled, cancelled, actor,
		fmt.Sprintf("%s cancelled sale %s", actor.Name, receipt))
	s.publishStock(touched)
	return cancelled, nil
}

func (s *transactionService) AddPayment(id uuid.UUID, req *PaymentRequest, actor Actor) (*PaymentResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	amount := req.Amount.Round(2)
	method := req.Method
	if method == "" {
		method = model.DebtPayCash
	}

	payment := &model.DebtPayment{Amount: amount, Method: method, Note: req.Note}
	payment.CreatedBy = actor.ID
	if payment.Note == "" {
		payment.Note = fmt.Sprintf("Payment via %s", method)
	}

	var receipt string
	var settled bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		transaction, err := s.txRepo.FindForUpdate(tx, id)
		if err != nil {
			return lookupErr(err, "transaction")
		}
		receipt = transaction.ReceiptNumber
		debt := transaction.DebtRecord
		if debt == nil {
			return apperror.New(apperror.KindNotADebtTransaction, "transaction %s is not a debt transaction", receipt)
		}
		if transaction.IsCancelled() {
			return apperror.New(apperror.KindAlreadyCancelled, "transaction %s is cancelled", receipt)
		}
		if debt.Status == model.DebtPaid || !debt.RemainingDebt.IsPositive() {
			return apperror.New(apperror.KindAlreadySettled, "debt of %s is already settled", receipt)
		}
		if amount.GreaterThan(debt.RemainingDebt) {
			return apperror.New(apperror.KindOverPayment, "payment %s exceeds remaining debt %s",
				amount.String(), debt.RemainingDebt.String())
		}

		ok, err := s.debtRepo.ApplyPayment(tx, debt.ID, amount, actor.ID)
		if err != nil {
			return apperror.Internal(err, "failed to apply payment")
		}
		if !ok {
			return apperror.New(apperror.KindOverPayment, "payment %s exceeds remaining debt", amount.String())
		}

		payment.DebtRecordID = debt.ID
		if err := s.debtRepo.AddPayment(tx, payment); err != nil {
			return apperror.Internal(err, "failed to record payment")
		}

		updated, err := s.debtRepo.FindForUpdate(tx, debt.ID)
		if err != nil {
			return apperror.Internal(err, "failed to reload debt record")
		}
		status := model.DebtPartial
		if updated.PaidAmount.GreaterThanOrEqual(updated.TotalDebt) {
			status = model.DebtPaid
			settled = true
		}
		if err := s.debtRepo.SetStatus(tx, debt.ID, status, actor.ID); err != nil {
			return apperror.Internal(err, "failed to update debt status")
		}
		if settled {
			if err := s.txRepo.MarkPaid(tx, id, updated.PaidAmount, actor.ID); err != nil {
				return apperror.Internal(err, "failed to settle transaction")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"receipt": receipt,
		"amount":  amount.String(),
		"method":  method,
		"settled": settled,
		"user":    actor.Name,
	}).Info("debt payment recorded")

	transaction, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	result := &PaymentResult{Payment: payment, DebtRecord: transaction.DebtRecord, Transaction: transaction}

	s.wsHub.Publish(ws.Event{
		Type:   ws.EventDebtPayment,
		Action: "payment_added",
		Data: map[string]interface{}{
			"transaction_id": transaction.ID,
			"receipt_number": receipt,
			"customer_name":  transaction.CustomerName,
			"amount":         amount,
			"remaining_debt": transaction.RemainingDebt,
			"is_paid":        transaction.IsPaid,
		},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s received %s for %s", actor.Name, amount.String(), receipt),
	})
	return result, nil
}

func (s *transactionService) Update(id uuid.UUID, req *UpdateTransactionRequest, actor Actor) (*model.Transaction, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	transaction, err := s.txRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "transaction")
	}
	if transaction.IsCancelled() {
		return nil, apperror.New(apperror.KindAlreadyCancelled, "transaction %s is cancelled", transaction.ReceiptNumber)
	}

	fields := map[string]interface{}{"updated_by": actor.ID}
	debtFields := map[string]interface{}{}
	if req.CustomerName != nil {
		fields["customer_name"] = strings.TrimSpace(*req.CustomerName)
		debtFields["customer_name"] = fields["customer_name"]
	}
	if req.CustomerPhone != nil {
		fields["customer_phone"] = *req.CustomerPhone
		debtFields["customer_phone"] = *req.CustomerPhone
	}
	if req.CustomerAddress != nil {
		fields["customer_address"] = *req.CustomerAddress
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.txRepo.UpdateCustomer(tx, id, fields); err != nil {
			return apperror.Internal(err, "failed to update transaction")
		}
		if transaction.DebtRecord != nil && len(debtFields) > 0 {
			if err := s.debtRepo.UpdateCustomer(tx, id, debtFields); err != nil {
				return apperror.Internal(err, "failed to update debt record")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *transactionService) Get(id uuid.UUID) (*model.Transaction, error) {
	transaction, err := s.txRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "transaction")
	}
	decorate(transaction)
	return transaction, nil
}

func (s *transactionService) GetByReceipt(receiptNumber string) (*model.Transaction, error) {
	transaction, err := s.txRepo.FindByReceipt(receiptNumber)
	if err != nil {
		return nil, lookupErr(err, "transaction")
	}
	decorate(transaction)
	return transaction, nil
}

func (s *transactionService) List(q repository.TransactionQuery) (*TransactionList, error) {
	transactions, total, err := s.txRepo.FindAll(q)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list transactions")
	}
	for i := range transactions {
		decorate(&transactions[i])
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}
	return &TransactionList{Transactions: transactions, Pagination: paginate(q.Page, total)}, nil
}

func (s *transactionService) Stats(from, to time.Time) (*SalesStats, error) {
	stats, err := s.txRepo.Stats(from, to)
	if err != nil {
		return nil, apperror.Internal(err, "failed to compute transaction stats")
	}
	outstanding, err := s.debtRepo.OutstandingBetween(from, to)
	if err != nil {
		return nil, apperror.Internal(err, "failed to compute outstanding debt")
	}
	return &SalesStats{TransactionStats: *stats, OutstandingDebt: outstanding}, nil
}

func (s *transactionService) DailySales(date time.Time) (*DailySales, error) {
	d := date.In(s.loc)
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1)

	transactions, err := s.txRepo.FindActiveBetween(from, to)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list daily sales")
	}
	for i := range transactions {
		decorate(&transactions[i])
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}
	stats, err := s.Stats(from, to)
	if err != nil {
		return nil, err
	}
	return &DailySales{Date: from.Format("2006-01-02"), Transactions: transactions, Stats: stats}, nil
}

// decorate fills the read-only fields clients display.
func decorate(t *model.Transaction) {
	t.ItemCount = len(t.Items)
	t.RemainingDebt = decimal.Zero
	if t.DebtRecord != nil && !t.IsCancelled() && t.DebtRecord.Status != model.DebtPaid {
		t.RemainingDebt = t.DebtRecord.RemainingDebt
	}
	t.IsFullyPaid = !t.IsCancelled() && (t.IsPaid || (t.DebtRecord != nil && !t.RemainingDebt.IsPositive()))
}

func (s *transactionService) publishSale(eventType string, t *model.Transaction, actor Actor, message string) {
	s.wsHub.Publish(ws.Event{
		Type: eventType,
		Data: map[string]interface{}{
			"id":             t.ID,
			"receipt_number": t.ReceiptNumber,
			"customer_name":  t.CustomerName,
			"payment_method": t.PaymentMethod,
			"total_amount":   t.TotalAmount,
			"status":         t.Status,
			"item_count":     t.ItemCount,
		},
		User:    actor.wsActor(),
		Message: message,
	})
}

// publishStock reloads the touched products and pushes their new levels,
// plus a low-stock alert for those at or under their minimum.
func (s *transactionService) publishStock(products []*model.Product) {
	var low []map[string]interface{}
	seen := make(map[uuid.UUID]bool)
	for _, p := range products {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		current, err := s.productRepo.FindByID(p.ID)
		if err != nil {
			s.log.WithError(err).WithField("product_id", p.ID).Warn("reload after stock change failed")
			continue
		}
		payload := stockPayload(current)
		s.wsHub.Publish(ws.Event{Type: ws.EventStockUpdate, Action: "stock_changed", Data: payload})
		if stock.IsLow(current.Stock, current.MinStock) {
			low = append(low, payload)
		}
	}
	if len(low) > 0 {
		s.wsHub.Publish(ws.Event{
			Type:    ws.EventLowStockAlert,
			Data:    low,
			Message: fmt.Sprintf("%d products at or below minimum stock", len(low)),
		})
	}
}
