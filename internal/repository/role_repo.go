package repository

import (
	"errors"

	"toko-bangunan-pos/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll() ([]model.Role, error)
	FindByID(id uint) (*model.Role, error)
	FindByCode(code string) (*model.Role, error)
	Create(role *model.Role) error
	SeedDefaults() error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll() ([]model.Role, error) {
	var roles []model.Role
	err := r.db.Preload("Privileges").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByID(id uint) (*model.Role, error) {
	var role model.Role
	err := r.db.Preload("Privileges").First(&role, id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) FindByCode(code string) (*model.Role, error) {
	var role model.Role
	err := r.db.Preload("Privileges").Where("code = ?", code).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) Create(role *model.Role) error {
	return r.db.Create(role).Error
}

// SeedDefaults creates the OWNER and CASHIER roles if missing and binds
// their privileges. OWNER gets every privilege.
func (r *roleRepo) SeedDefaults() error {
	var all []model.Privilege
	if err := r.db.Find(&all).Error; err != nil {
		return err
	}
	cashier := make(map[string]bool, len(model.CashierPrivileges))
	for _, code := range model.CashierPrivileges {
		cashier[code] = true
	}

	for _, defaultRole := range model.DefaultRoles {
		role := defaultRole
		err := r.db.Where("code = ?", role.Code).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.Create(&role).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var privileges []model.Privilege
		for _, p := range all {
			if role.Code == model.RoleOwner || cashier[p.Code] {
				privileges = append(privileges, p)
			}
		}
		if err := r.db.Model(&role).Association("Privileges").Replace(privileges); err != nil {
			return err
		}
	}
	return nil
}
