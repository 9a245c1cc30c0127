package service

import (
	"time"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/repository"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	Date            string          `json:"date"`
	TodaySales      decimal.Decimal `json:"today_sales"`
	TodayCount      int64           `json:"today_transactions"`
	AverageTicket   decimal.Decimal `json:"average_ticket"`
	TotalProducts   int64           `json:"total_products"`
	LowStockCount   int64           `json:"low_stock_count"`
	OutOfStockCount int64           `json:"out_of_stock_count"`
	StockValue      decimal.Decimal `json:"stock_value"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
	CustomersOwing  int64           `json:"customers_with_debt"`
	OverdueDebt     decimal.Decimal `json:"overdue_debt"`
}

type DashboardService interface {
	GetStockMovement(days int) ([]repository.MovementDay, error)
	GetDashboardStats() (*DashboardStats, error)
}

type dashboardService struct {
	txRepo       repository.TransactionRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	debtRepo     repository.DebtRepository
	loc          *time.Location
	now          func() time.Time
}

func NewDashboardService(
	txRepo repository.TransactionRepository,
	pRepo repository.ProductRepository,
	mRepo repository.StockMovementRepository,
	dRepo repository.DebtRepository,
	loc *time.Location,
) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{
		txRepo:       txRepo,
		productRepo:  pRepo,
		movementRepo: mRepo,
		debtRepo:     dRepo,
		loc:          loc,
		now:          time.Now,
	}
}

func (s *dashboardService) startOfDay(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// GetStockMovement returns daily inbound/outbound totals for the last days,
// today included.
func (s *dashboardService) GetStockMovement(days int) ([]repository.MovementDay, error) {
	if days < 1 {
		days = 7
	}
	if days > 366 {
		days = 366
	}
	end := s.startOfDay(s.now()).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	data, err := s.movementRepo.DailyTotals(start, end)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load stock movement")
	}
	if data == nil {
		data = []repository.MovementDay{}
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats() (*DashboardStats, error) {
	from := s.startOfDay(s.now())
	to := from.AddDate(0, 0, 1)

	sales, err := s.txRepo.Stats(from, to)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load today's sales")
	}
	products, err := s.productRepo.Stats()
	if err != nil {
		return nil, apperror.Internal(err, "failed to load stock stats")
	}
	debts, err := s.debtRepo.Summary(s.now())
	if err != nil {
		return nil, apperror.Internal(err, "failed to load debt summary")
	}

	average := decimal.Zero
	if sales.ActiveCount > 0 {
		average = sales.TotalSales.Div(decimal.NewFromInt(sales.ActiveCount)).Round(2)
	}

	return &DashboardStats{
		Date:            from.Format("2006-01-02"),
		TodaySales:      sales.TotalSales,
		TodayCount:      sales.ActiveCount,
		AverageTicket:   average,
		TotalProducts:   products.TotalProducts,
		LowStockCount:   products.LowStockCount,
		OutOfStockCount: products.OutOfStockCount,
		StockValue:      products.StockValue,
		OutstandingDebt: debts.TotalOutstanding,
		CustomersOwing:  debts.CustomerCount,
		OverdueDebt:     debts.OverdueAmount,
	}, nil
}
