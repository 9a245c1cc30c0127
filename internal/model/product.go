package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product stock is always kept in BaseUnit quantities.
type Product struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null;index" json:"name"`
	SKU         string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Description string          `gorm:"type:text" json:"description"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SupplierID  *uuid.UUID      `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Supplier    *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Cost        decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"cost"`
	Stock       decimal.Decimal `gorm:"type:numeric(15,3);not null;default:0" json:"stock"`
	MinStock    decimal.Decimal `gorm:"type:numeric(15,3);not null;default:0" json:"min_stock"`
	BaseUnit    string          `gorm:"type:varchar(30);not null" json:"base_unit"`

	Units          []ProductUnit   `gorm:"foreignKey:ProductID" json:"units,omitempty"`
	StockMovements []StockMovement `gorm:"foreignKey:ProductID" json:"stock_movements,omitempty"`

	// Derived on read, never persisted.
	StockStatus     string `gorm:"-" json:"stock_status,omitempty"`
	HasTransactions bool   `gorm:"-" json:"has_transactions"`
}

// ProductUnit is one way of selling a product. ConversionRate is how many base
// units one of this unit equals ("kg" of a 40kg "sak" has rate 0.025).
type ProductUnit struct {
	BaseModel
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_unit_name" json:"product_id"`
	Name           string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_product_unit_name" json:"name"`
	Price          decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"price"`
	ConversionRate decimal.Decimal `gorm:"type:numeric(15,6);not null;default:1" json:"conversion_rate"`
	IsBaseUnit     bool            `gorm:"not null;default:false" json:"is_base_unit"`

	// Available is the product's stock expressed in this unit. Derived on read.
	Available decimal.Decimal `gorm:"-" json:"available"`
}

// UnitByName returns the unit sold under name, if the product defines one.
func (p *Product) UnitByName(name string) (*ProductUnit, bool) {
	for i := range p.Units {
		if p.Units[i].Name == name {
			return &p.Units[i], true
		}
	}
	return nil, false
}
