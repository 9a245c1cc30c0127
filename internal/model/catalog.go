package model

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	ProductCount int64 `gorm:"->;-:migration" json:"product_count"`
}

type Supplier struct {
	BaseModel
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Contact string `gorm:"type:varchar(100)" json:"contact"`
	Address string `gorm:"type:text" json:"address"`

	ProductCount int64 `gorm:"->;-:migration" json:"product_count"`
}

// CategoryRef is the slim projection embedded in product listings.
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
