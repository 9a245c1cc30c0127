package handler

import (
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// GET /api/v1/products
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	categoryID, err := queryUUID(c, "category_id")
	if err != nil {
		return err
	}
	supplierID, err := queryUUID(c, "supplier_id")
	if err != nil {
		return err
	}
	lowStock, err := queryBool(c, "low_stock")
	if err != nil {
		return err
	}

	result, err := h.service.ListProducts(repository.ProductQuery{
		Page:       queryPage(c),
		Search:     c.Query("search"),
		CategoryID: categoryID,
		SupplierID: supplierID,
		LowStock:   lowStock != nil && *lowStock,
		SortBy:     c.Query("sort_by", "name"),
		SortOrder:  c.Query("sort_order", "asc"),
	})
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.service.GetProduct(id)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(&req, actorFrom(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /api/v1/products/:id
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(id, &req, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DELETE /api/v1/products/:id
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteProduct(id, actorFrom(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// GET /api/v1/categories
func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories()
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	category, err := h.service.GetCategory(id)
	if err != nil {
		return err
	}
	return c.JSON(category)
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	category, err := h.service.CreateCategory(&req, actorFrom(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Category created", "data": category})
}

func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.CategoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	category, err := h.service.UpdateCategory(id, &req, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Category updated", "data": category})
}

func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteCategory(id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

// GET /api/v1/suppliers
func (h *CatalogHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.service.ListSuppliers(c.Query("search"))
	if err != nil {
		return err
	}
	return c.JSON(suppliers)
}

func (h *CatalogHandler) GetSupplier(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	supplier, err := h.service.GetSupplier(id)
	if err != nil {
		return err
	}
	return c.JSON(supplier)
}

func (h *CatalogHandler) CreateSupplier(c *fiber.Ctx) error {
	var req service.SupplierRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	supplier, err := h.service.CreateSupplier(&req, actorFrom(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Supplier created", "data": supplier})
}

func (h *CatalogHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.SupplierRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	supplier, err := h.service.UpdateSupplier(id, &req, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Supplier updated", "data": supplier})
}

func (h *CatalogHandler) DeleteSupplier(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteSupplier(id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Supplier deleted"})
}
