package repository

import (
	"toko-bangunan-pos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PrivilegeRepository interface {
	FindByCodes(codes []string) ([]model.Privilege, error)
	FindAll() ([]model.Privilege, error)
	SeedDefaults() error
}

type privilegeRepo struct {
	db *gorm.DB
}

func NewPrivilegeRepo(db *gorm.DB) PrivilegeRepository {
	return &privilegeRepo{db}
}

// FindByCodes returns the privileges matching codes; unknown codes are
// simply absent from the result.
func (r *privilegeRepo) FindByCodes(codes []string) ([]model.Privilege, error) {
	privileges := []model.Privilege{}
	if len(codes) == 0 {
		return privileges, nil
	}
	err := r.db.Where("code IN ?", codes).Order("code ASC").Find(&privileges).Error
	return privileges, err
}

func (r *privilegeRepo) FindAll() ([]model.Privilege, error) {
	var privileges []model.Privilege
	err := r.db.Order("code ASC").Find(&privileges).Error
	return privileges, err
}

// SeedDefaults inserts the built-in privileges and keeps their display
// names current on every boot.
func (r *privilegeRepo) SeedDefaults() error {
	privileges := make([]model.Privilege, len(model.DefaultPrivileges))
	copy(privileges, model.DefaultPrivileges)
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&privileges).Error
}
