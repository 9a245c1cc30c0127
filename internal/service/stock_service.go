package service

import (
	"fmt"

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

// AdjustStockRequest is a manual stock change in base units. IN and OUT take
// the magnitude from Quantity; ADJUSTMENT applies Quantity as a signed delta.
type AdjustStockRequest struct {
	ProductID uuid.UUID          `json:"product_id" validate:"uuid_required"`
	Type      model.MovementType `json:"type" validate:"required,oneof=IN OUT ADJUSTMENT"`
	Quantity  decimal.Decimal    `json:"quantity" validate:"ne=0"`
	Note      string             `json:"note" validate:"max=500"`
}

type AdjustStockResult struct {
	Product       *model.Product       `json:"product"`
	Movement      *model.StockMovement `json:"movement"`
	PreviousStock decimal.Decimal      `json:"previous_stock"`
	NewStock      decimal.Decimal      `json:"new_stock"`
	StockStatus   stock.Status         `json:"stock_status"`
}

type LowStockItem struct {
	model.Product
	Urgency string `json:"urgency"`
}

type MovementList struct {
	Movements  []model.StockMovement `json:"movements"`
	Pagination Pagination            `json:"pagination"`
}

type StockService interface {
	Adjust(req *AdjustStockRequest, actor Actor) (*AdjustStockResult, error)
	LowStock() ([]LowStockItem, error)
	Movements(q repository.MovementQuery) (*MovementList, error)
	Stats() (*repository.ProductStats, error)
}

type stockService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	db           *gorm.DB
	wsHub        *ws.Hub
	log          *logrus.Logger
}

func NewStockService(pRepo repository.ProductRepository, mRepo repository.StockMovementRepository, db *gorm.DB, hub *ws.Hub, log *logrus.Logger) StockService {
	return &stockService{
		productRepo:  pRepo,
		movementRepo: mRepo,
		db:           db,
		wsHub:        hub,
		log:          log,
	}
}

func (s *stockService) Adjust(req *AdjustStockRequest, actor Actor) (*AdjustStockResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	delta := req.Quantity.Round(stock.QuantityScale)
	switch req.Type {
	case model.MovementIn:
		delta = delta.Abs()
	case model.MovementOut:
		delta = delta.Abs().Neg()
	}
	if delta.IsZero() {
		return nil, apperror.InvalidState("quantity rounds to zero")
	}
	note := req.Note
	if note == "" {
		note = fmt.Sprintf("Manual stock %s", req.Type)
	}

	var res *stock.Result
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = stock.Adjust(tx, stock.Entry{
			ProductID:     req.ProductID,
			Delta:         delta,
			Type:          req.Type,
			ReferenceType: model.RefManual,
			Note:          note,
			Actor:         actor.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	p := res.Product
	stock.Annotate(p)
	s.log.WithFields(logrus.Fields{
		"sku":   p.SKU,
		"type":  req.Type,
		"delta": delta.String(),
		"stock": p.Stock.String(),
		"user":  actor.Name,
	}).Info("stock adjusted")

	s.wsHub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "stock_adjusted",
		Data:    stockPayload(p),
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s adjusted '%s' by %s %s", actor.Name, p.Name, delta.String(), p.BaseUnit),
	})
	if stock.IsLow(p.Stock, p.MinStock) {
		s.wsHub.Publish(ws.Event{
			Type:    ws.EventLowStockAlert,
			Data:    []map[string]interface{}{stockPayload(p)},
			Message: fmt.Sprintf("'%s' is low on stock", p.Name),
		})
	}

	return &AdjustStockResult{
		Product:       p,
		Movement:      res.Movement,
		PreviousStock: res.Movement.StockBefore,
		NewStock:      p.Stock,
		StockStatus:   stock.Status(p.StockStatus),
	}, nil
}

func (s *stockService) LowStock() ([]LowStockItem, error) {
	products, err := s.productRepo.FindLowStock()
	if err != nil {
		return nil, apperror.Internal(err, "failed to list low stock products")
	}
	items := make([]LowStockItem, 0, len(products))
	for _, p := range products {
		stock.Annotate(&p)
		items = append(items, LowStockItem{Product: p, Urgency: stock.Urgency(p.Stock, p.MinStock)})
	}
	return items, nil
}

func (s *stockService) Movements(q repository.MovementQuery) (*MovementList, error) {
	movements, total, err := s.movementRepo.FindAll(q)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list stock movements")
	}
	if movements == nil {
		movements = []model.StockMovement{}
	}
	return &MovementList{Movements: movements, Pagination: paginate(q.Page, total)}, nil
}

func (s *stockService) Stats() (*repository.ProductStats, error) {
	stats, err := s.productRepo.Stats()
	if err != nil {
		return nil, apperror.Internal(err, "failed to compute stock stats")
	}
	return stats, nil
}
