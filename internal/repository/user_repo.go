package repository

import (
	"strings"
	"time"

	"toko-bangunan-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByUsername(username string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
	Create(user *model.User) error
	Update(user *model.User) error
	Delete(id uuid.UUID, actor string) error
	UpdatePassword(userID uuid.UUID, hashedPassword string) error
	UpdatePrivileges(userID uuid.UUID, privileges []model.Privilege) error
	FindAll(q UserQuery) ([]model.User, error)
	UpdateTokenVersion(userID uuid.UUID, version string) error
	UpdateLastLogin(userID uuid.UUID, at time.Time) error
	Count() (int64, error)
}

// UserQuery filters the account list. Zero values match everything.
type UserQuery struct {
	Search   string
	RoleCode string
	Active   *bool
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Role").Preload("Privileges").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Role").Preload("Privileges").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepo) Update(user *model.User) error {
	return r.db.Omit("Privileges", "Role").Save(user).Error
}

func (r *userRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword).Error
}

func (r *userRepo) UpdatePrivileges(userID uuid.UUID, privileges []model.Privilege) error {
	var user model.User
	if err := r.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	return r.db.Model(&user).Association("Privileges").Replace(privileges)
}

// Delete soft-deletes the account and records who removed it.
func (r *userRepo) Delete(id uuid.UUID, actor string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", id).Update("deleted_by", actor).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, "id = ?", id).Error
	})
}

func (r *userRepo) FindAll(q UserQuery) ([]model.User, error) {
	query := r.db.Model(&model.User{})
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?", like, like)
	}
	if q.RoleCode != "" {
		query = query.Where("role_id IN (?)", r.db.Model(&model.Role{}).Select("id").Where("code = ?", q.RoleCode))
	}
	if q.Active != nil {
		query = query.Where("is_active = ?", *q.Active)
	}

	var users []model.User
	err := query.Preload("Role").Preload("Privileges").Order("username ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("token_version", version).Error
}

func (r *userRepo) UpdateLastLogin(userID uuid.UUID, at time.Time) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("last_login_at", at).Error
}

func (r *userRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Count(&count).Error
	return count, err
}
