package service

import (
	"fmt"
	"strings"

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

type UnitRequest struct {
	Name           string          `json:"name" validate:"required,max=30"`
	Price          decimal.Decimal `json:"price" validate:"gt=0"`
	ConversionRate decimal.Decimal `json:"conversion_rate" validate:"gt=0"`
	IsBaseUnit     bool            `json:"is_base_unit"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	SKU         string          `json:"sku" validate:"required,max=50"`
	Description string          `json:"description"`
	CategoryID  uuid.UUID       `json:"category_id" validate:"uuid_required"`
	SupplierID  *uuid.UUID      `json:"supplier_id"`
	Cost        decimal.Decimal `json:"cost" validate:"gte=0"`
	Stock       decimal.Decimal `json:"stock" validate:"gte=0"`
	MinStock    decimal.Decimal `json:"min_stock" validate:"gte=0"`
	BaseUnit    string          `json:"base_unit" validate:"required,max=30"`
	Units       []UnitRequest   `json:"units" validate:"required,min=1,dive"`
}

// UpdateProductRequest is a partial update. Nil fields are left alone; a
// non-nil Units replaces the whole unit list. Stock is not editable here.
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=255"`
	SKU           *string          `json:"sku" validate:"omitempty,min=1,max=50"`
	Description   *string          `json:"description"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	SupplierID    *uuid.UUID       `json:"supplier_id"`
	ClearSupplier bool             `json:"clear_supplier"`
	Cost          *decimal.Decimal `json:"cost" validate:"omitempty,gte=0"`
	MinStock      *decimal.Decimal `json:"min_stock" validate:"omitempty,gte=0"`
	BaseUnit      *string          `json:"base_unit" validate:"omitempty,min=1,max=30"`
	Units         []UnitRequest    `json:"units" validate:"omitempty,min=1,dive"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type SupplierRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Contact string `json:"contact" validate:"max=100"`
	Address string `json:"address"`
}

type ProductList struct {
	Products   []model.Product `json:"products"`
	Pagination Pagination      `json:"pagination"`
}

type CatalogService interface {
	CreateProduct(req *CreateProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(id uuid.UUID, req *UpdateProductRequest, actor Actor) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actor Actor) error
	GetProduct(id uuid.UUID) (*model.Product, error)
	ListProducts(q repository.ProductQuery) (*ProductList, error)

	ListCategories() ([]model.Category, error)
	GetCategory(id uuid.UUID) (*model.Category, error)
	CreateCategory(req *CategoryRequest, actor Actor) (*model.Category, error)
	UpdateCategory(id uuid.UUID, req *CategoryRequest, actor Actor) (*model.Category, error)
	DeleteCategory(id uuid.UUID) error

	ListSuppliers(search string) ([]model.Supplier, error)
	GetSupplier(id uuid.UUID) (*model.Supplier, error)
	CreateSupplier(req *SupplierRequest, actor Actor) (*model.Supplier, error)
	UpdateSupplier(id uuid.UUID, req *SupplierRequest, actor Actor) (*model.Supplier, error)
	DeleteSupplier(id uuid.UUID) error
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	db           *gorm.DB
	wsHub        *ws.Hub
	log          *logrus.Logger
}

func NewCatalogService(
	pRepo repository.ProductRepository,
	cRepo repository.CategoryRepository,
	sRepo repository.SupplierRepository,
	db *gorm.DB,
	hub *ws.Hub,
	log *logrus.Logger,
) CatalogService {
	return &catalogService{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		supplierRepo: sRepo,
		db:           db,
		wsHub:        hub,
		log:          log,
	}
}

// checkUnits enforces the unit rules shared by create and update: exactly one
// base unit, named after the product's base unit with rate 1, unique names
// and positive rates.
func checkUnits(baseUnit string, units []model.ProductUnit) error {
	var bases int
	seen := make(map[string]bool, len(units))
	for _, u := range units {
		key := strings.ToLower(u.Name)
		if seen[key] {
			return apperror.InvalidState("unit %q is defined twice", u.Name)
		}
		seen[key] = true

		if !stock.ValidRate(u.ConversionRate) {
			return apperror.InvalidState("unit %q must have a conversion rate greater than 0", u.Name)
		}
		if !u.IsBaseUnit {
			continue
		}
		bases++
		if !u.ConversionRate.Equal(decimal.NewFromInt(1)) {
			return apperror.InvalidState("base unit %q must have conversion rate 1", u.Name)
		}
		if u.Name != baseUnit {
			return apperror.InvalidState("base unit %q does not match product base unit %q", u.Name, baseUnit)
		}
	}
	if bases != 1 {
		return apperror.InvalidState("product must have exactly one base unit, got %d", bases)
	}
	return nil
}

func toUnits(reqs []UnitRequest, actor Actor) []model.ProductUnit {
	units := make([]model.ProductUnit, len(reqs))
	for i, u := range reqs {
		units[i] = model.ProductUnit{
			Name:           strings.TrimSpace(u.Name),
			Price:          u.Price.Round(2),
			ConversionRate: u.ConversionRate,
			IsBaseUnit:     u.IsBaseUnit,
		}
		units[i].CreatedBy = actor.ID
	}
	return units
}

func (s *catalogService) requireCategory(id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		return lookupErr(err, "category")
	}
	return nil
}

func (s *catalogService) requireSupplier(id uuid.UUID) error {
	if _, err := s.supplierRepo.FindByID(id); err != nil {
		return lookupErr(err, "supplier")
	}
	return nil
}

func (s *catalogService) CreateProduct(req *CreateProductRequest, actor Actor) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	baseUnit := strings.TrimSpace(req.BaseUnit)
	units := toUnits(req.Units, actor)
	if err := checkUnits(baseUnit, units); err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(req.SKU)
	if existing, err := s.productRepo.FindBySKU(sku); err == nil && existing != nil {
		return nil, apperror.Conflict("SKU %s already exists", sku)
	}
	if err := s.requireCategory(req.CategoryID); err != nil {
		return nil, err
	}
	if req.SupplierID != nil {
		if err := s.requireSupplier(*req.SupplierID); err != nil {
			return nil, err
		}
	}

	product := &model.Product{
		Name:        strings.TrimSpace(req.Name),
		SKU:         sku,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		SupplierID:  req.SupplierID,
		Cost:        req.Cost.Round(2),
		MinStock:    req.MinStock.Round(stock.QuantityScale),
		BaseUnit:    baseUnit,
		Units:       units,
	}
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID
	initial := req.Stock.Round(stock.QuantityScale)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(tx, product); err != nil {
			return storeErr(err, "failed to create product %s", sku)
		}
		if !initial.IsPositive() {
			return nil
		}
		_, err := stock.Adjust(tx, stock.Entry{
			ProductID:     product.ID,
			Delta:         initial,
			Type:          model.MovementIn,
			ReferenceType: model.RefInitial,
			Note:          "Initial stock",
			Actor:         actor.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"sku": sku, "stock": initial.String(), "user": actor.Name}).Info("product created")

	created, err := s.GetProduct(product.ID)
	if err != nil {
		return nil, err
	}
	s.wsHub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "product_created",
		Data:    stockPayload(created),
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s created product '%s'", actor.Name, created.Name),
	})
	return created, nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest, actor Actor) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "product")
	}

	fields := map[string]interface{}{"updated_by": actor.ID}

	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		if sku != existing.SKU {
			used, err := s.productRepo.CountTransactionItems(id)
			if err != nil {
				return nil, apperror.Internal(err, "failed to check product history")
			}
			if used > 0 {
				return nil, apperror.InvalidState("SKU of %s cannot change once it has been sold", existing.SKU)
			}
			if other, err := s.productRepo.FindBySKU(sku); err == nil && other.ID != id {
				return nil, apperror.Conflict("SKU %s already exists", sku)
			}
			fields["sku"] = sku
		}
	}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.CategoryID != nil && *req.CategoryID != existing.CategoryID {
		if err := s.requireCategory(*req.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *req.CategoryID
	}
	switch {
	case req.ClearSupplier:
		fields["supplier_id"] = nil
	case req.SupplierID != nil:
		if err := s.requireSupplier(*req.SupplierID); err != nil {
			return nil, err
		}
		fields["supplier_id"] = *req.SupplierID
	}
	if req.Cost != nil {
		fields["cost"] = req.Cost.Round(2)
	}
	if req.MinStock != nil {
		fields["min_stock"] = req.MinStock.Round(stock.QuantityScale)
	}

	baseUnit := existing.BaseUnit
	if req.BaseUnit != nil {
		baseUnit = strings.TrimSpace(*req.BaseUnit)
		fields["base_unit"] = baseUnit
	}
	units := existing.Units
	if req.Units != nil {
		units = toUnits(req.Units, actor)
	}
	if err := checkUnits(baseUnit, units); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Update(tx, id, fields); err != nil {
			return storeErr(err, "failed to update product %s", existing.SKU)
		}
		if req.Units != nil {
			if err := s.productRepo.ReplaceUnits(tx, id, units); err != nil {
				return storeErr(err, "failed to replace units of %s", existing.SKU)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	s.wsHub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "product_updated",
		Data:    stockPayload(updated),
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s updated product '%s'", actor.Name, updated.Name),
	})
	return updated, nil
}

func (s *catalogService) DeleteProduct(id uuid.UUID, actor Actor) error {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return lookupErr(err, "product")
	}
	used, err := s.productRepo.CountTransactionItems(id)
	if err != nil {
		return apperror.Internal(err, "failed to check product history")
	}
	if used > 0 {
		return apperror.InvalidState("product %s has %d sale lines and cannot be deleted", product.SKU, used)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.productRepo.Delete(tx, id)
	})
	if err != nil {
		return storeErr(err, "failed to delete product %s", product.SKU)
	}

	s.log.WithFields(logrus.Fields{"sku": product.SKU, "user": actor.Name}).Info("product deleted")
	s.wsHub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "product_deleted",
		Data:    map[string]interface{}{"id": product.ID, "sku": product.SKU, "name": product.Name},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s deleted product '%s'", actor.Name, product.Name),
	})
	return nil
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "product")
	}
	used, err := s.productRepo.CountTransactionItems(id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to check product history")
	}
	stock.Annotate(product)
	product.HasTransactions = used > 0
	return product, nil
}

func (s *catalogService) ListProducts(q repository.ProductQuery) (*ProductList, error) {
	products, total, err := s.productRepo.FindAll(q)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list products")
	}

	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	counts, err := s.productRepo.TransactionItemCounts(ids)
	if err != nil {
		return nil, apperror.Internal(err, "failed to check product history")
	}
	for i := range products {
		stock.Annotate(&products[i])
		products[i].HasTransactions = counts[products[i].ID] > 0
	}

	if products == nil {
		products = []model.Product{}
	}
	return &ProductList{Products: products, Pagination: paginate(q.Page, total)}, nil
}

func (s *catalogService) ListCategories() ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, apperror.Internal(err, "failed to list categories")
	}
	return categories, nil
}

func (s *catalogService) GetCategory(id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "category")
	}
	return category, nil
}

func (s *catalogService) CreateCategory(req *CategoryRequest, actor Actor) (*model.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if existing, err := s.categoryRepo.FindByName(name); err == nil && existing != nil {
		return nil, apperror.Conflict("category %s already exists", name)
	}

	category := &model.Category{Name: name, Description: req.Description}
	category.CreatedBy = actor.ID
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, storeErr(err, "failed to create category %s", name)
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(id uuid.UUID, req *CategoryRequest, actor Actor) (*model.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "category")
	}
	name := strings.TrimSpace(req.Name)
	if other, err := s.categoryRepo.FindByName(name); err == nil && other.ID != id {
		return nil, apperror.Conflict("category %s already exists", name)
	}

	category.Name = name
	category.Description = req.Description
	category.UpdatedBy = actor.ID
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, storeErr(err, "failed to update category %s", name)
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return lookupErr(err, "category")
	}
	if category.ProductCount > 0 {
		return apperror.InvalidState("category %s still has %d products", category.Name, category.ProductCount)
	}
	if err := s.categoryRepo.Delete(id); err != nil {
		return storeErr(err, "failed to delete category %s", category.Name)
	}
	return nil
}

func (s *catalogService) ListSuppliers(search string) ([]model.Supplier, error) {
	suppliers, err := s.supplierRepo.FindAll(search)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list suppliers")
	}
	return suppliers, nil
}

func (s *catalogService) GetSupplier(id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "supplier")
	}
	return supplier, nil
}

func (s *catalogService) CreateSupplier(req *SupplierRequest, actor Actor) (*model.Supplier, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	supplier := &model.Supplier{
		Name:    strings.TrimSpace(req.Name),
		Contact: req.Contact,
		Address: req.Address,
	}
	supplier.CreatedBy = actor.ID
	if err := s.supplierRepo.Create(supplier); err != nil {
		return nil, storeErr(err, "failed to create supplier %s", supplier.Name)
	}
	return supplier, nil
}

func (s *catalogService) UpdateSupplier(id uuid.UUID, req *SupplierRequest, actor Actor) (*model.Supplier, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "supplier")
	}
	supplier.Name = strings.TrimSpace(req.Name)
	supplier.Contact = req.Contact
	supplier.Address = req.Address
	supplier.UpdatedBy = actor.ID
	if err := s.supplierRepo.Update(supplier); err != nil {
		return nil, storeErr(err, "failed to update supplier %s", supplier.Name)
	}
	return supplier, nil
}

func (s *catalogService) DeleteSupplier(id uuid.UUID) error {
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		return lookupErr(err, "supplier")
	}
	if supplier.ProductCount > 0 {
		return apperror.InvalidState("supplier %s still has %d products", supplier.Name, supplier.ProductCount)
	}
	if err := s.supplierRepo.Delete(id); err != nil {
		return storeErr(err, "failed to delete supplier %s", supplier.Name)
	}
	return nil
}

func stockPayload(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":           p.ID,
		"sku":          p.SKU,
		"name":         p.Name,
		"stock":        p.Stock,
		"min_stock":    p.MinStock,
		"base_unit":    p.BaseUnit,
		"stock_status": stock.StatusOf(p.Stock, p.MinStock),
	}
}
