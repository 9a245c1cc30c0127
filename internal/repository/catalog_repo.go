package repository

import (
	"toko-bangunan-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(category *model.Category) error
	FindAll() ([]model.Category, error)
	FindByID(id uuid.UUID) (*model.Category, error)
	FindByName(name string) (*model.Category, error)
	Update(category *model.Category) error
	Delete(id uuid.UUID) error
	CountProducts(id uuid.UUID) (int64, error)
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

// productCountSelect adds the live product count for owner rows of table.
func productCountSelect(table, column string) string {
	return table + ".*, (SELECT COUNT(*) FROM products WHERE products." + column + " = " + table + ".id AND products.deleted_at IS NULL) AS product_count"
}

func (r *categoryRepo) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

func (r *categoryRepo) FindAll() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Select(productCountSelect("categories", "category_id")).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) FindByID(id uuid.UUID) (*model.Category, error) {
	var category model.Category
	err := r.db.Select(productCountSelect("categories", "category_id")).
		First(&category, "categories.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) FindByName(name string) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) Update(category *model.Category) error {
	return r.db.Model(category).Select("name", "description", "updated_by").Updates(category).Error
}

func (r *categoryRepo) Delete(id uuid.UUID) error {
	return r.db.Unscoped().Delete(&model.Category{}, "id = ?", id).Error
}

func (r *categoryRepo) CountProducts(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}

type SupplierRepository interface {
	Create(supplier *model.Supplier) error
	FindAll(search string) ([]model.Supplier, error)
	FindByID(id uuid.UUID) (*model.Supplier, error)
	Update(supplier *model.Supplier) error
	Delete(id uuid.UUID) error
	CountProducts(id uuid.UUID) (int64, error)
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(supplier *model.Supplier) error {
	return r.db.Create(supplier).Error
}

func (r *supplierRepo) FindAll(search string) ([]model.Supplier, error) {
	query := r.db.Select(productCountSelect("suppliers", "supplier_id"))
	if search != "" {
		p := likePattern(search)
		query = query.Where("LOWER(suppliers.name) LIKE ? OR LOWER(suppliers.contact) LIKE ?", p, p)
	}
	var suppliers []model.Supplier
	err := query.Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) FindByID(id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	err := r.db.Select(productCountSelect("suppliers", "supplier_id")).
		First(&supplier, "suppliers.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepo) Update(supplier *model.Supplier) error {
	return r.db.Model(supplier).Select("name", "contact", "address", "updated_by").Updates(supplier).Error
}

func (r *supplierRepo) Delete(id uuid.UUID) error {
	return r.db.Unscoped().Delete(&model.Supplier{}, "id = ?", id).Error
}

func (r *supplierRepo) CountProducts(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Where("supplier_id = ?", id).Count(&count).Error
	return count, err
}
