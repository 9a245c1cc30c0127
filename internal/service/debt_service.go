package service

import (
	"strings"
	"time"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DebtList struct {
	Debts      []model.DebtRecord `json:"debts"`
	Pagination Pagination         `json:"pagination"`
}

type CustomerDebts struct {
	CustomerName     string             `json:"customer_name"`
	TotalDebt        decimal.Decimal    `json:"total_debt"`
	TotalPaid        decimal.Decimal    `json:"total_paid"`
	TotalOutstanding decimal.Decimal    `json:"total_outstanding"`
	Debts            []model.DebtRecord `json:"debts"`
}

type DebtService interface {
	List(q repository.DebtQuery) (*DebtList, error)
	Get(id uuid.UUID) (*model.DebtRecord, error)
	ByCustomer(name string) (*CustomerDebts, error)
	Summary() (*repository.DebtSummary, error)
	Pay(debtID uuid.UUID, req *PaymentRequest, actor Actor) (*PaymentResult, error)
}

type debtService struct {
	debtRepo     repository.DebtRepository
	transactions TransactionService
	now          func() time.Time
}

func NewDebtService(dRepo repository.DebtRepository, transactions TransactionService) DebtService {
	return &debtService{debtRepo: dRepo, transactions: transactions, now: time.Now}
}

func (s *debtService) List(q repository.DebtQuery) (*DebtList, error) {
	if q.Overdue && q.Now.IsZero() {
		q.Now = s.now()
	}
	debts, total, err := s.debtRepo.FindAll(q)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list debts")
	}
	if debts == nil {
		debts = []model.DebtRecord{}
	}
	return &DebtList{Debts: debts, Pagination: paginate(q.Page, total)}, nil
}

func (s *debtService) Get(id uuid.UUID) (*model.DebtRecord, error) {
	debt, err := s.debtRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "debt record")
	}
	return debt, nil
}

// ByCustomer lists every debt of one customer. Totals only count debts that
// are still open: a cancelled sale's record is closed and owes nothing.
func (s *debtService) ByCustomer(name string) (*CustomerDebts, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation([]apperror.FieldError{{Field: "customer_name", Tag: "required"}})
	}
	debts, err := s.debtRepo.FindByCustomer(name)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load customer debts")
	}

	out := &CustomerDebts{
		CustomerName:     name,
		TotalDebt:        decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
		Debts:            debts,
	}
	if out.Debts == nil {
		out.Debts = []model.DebtRecord{}
	}
	for _, d := range debts {
		if d.Transaction != nil && d.Transaction.IsCancelled() {
			continue
		}
		out.TotalDebt = out.TotalDebt.Add(d.TotalDebt)
		out.TotalPaid = out.TotalPaid.Add(d.PaidAmount)
		if d.Status != model.DebtPaid {
			out.TotalOutstanding = out.TotalOutstanding.Add(d.RemainingDebt)
		}
	}
	return out, nil
}

func (s *debtService) Summary() (*repository.DebtSummary, error) {
	summary, err := s.debtRepo.Summary(s.now())
	if err != nil {
		return nil, apperror.Internal(err, "failed to compute debt summary")
	}
	return summary, nil
}

// Pay records a payment against a debt record by routing it through the
// owning transaction.
func (s *debtService) Pay(debtID uuid.UUID, req *PaymentRequest, actor Actor) (*PaymentResult, error) {
	debt, err := s.debtRepo.FindByID(debtID)
	if err != nil {
		return nil, lookupErr(err, "debt record")
	}
	return s.transactions.AddPayment(debt.TransactionID, req, actor)
}
