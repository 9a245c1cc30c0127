package main

import (
	"errors"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/config"
	"toko-bangunan-pos/internal/logging"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/service"
	"toko-bangunan-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type unitSeed struct {
	name  string
	price int64
	rate  string
}

type productSeed struct {
	sku, name, category, supplier string
	baseUnit                      string
	cost                          int64
	stock, minStock               int64
	units                         []unitSeed
}

var categories = []service.CategoryRequest{
	{Name: "Semen", Description: "Semen dan mortar"},
	{Name: "Besi & Baja", Description: "Besi beton, hollow, plat"},
	{Name: "Cat & Alat Cat", Description: "Cat tembok, kuas, roller"},
	{Name: "Paku & Kawat", Description: "Paku, baut, kawat bendrat"},
}

var suppliers = []service.SupplierRequest{
	{Name: "PT Semen Nusantara Distribusi", Contact: "021-5550101", Address: "Jl. Industri No. 12, Bekasi"},
	{Name: "CV Baja Makmur", Contact: "0812-3456-7890", Address: "Jl. Raya Cikarang No. 8"},
	{Name: "UD Sumber Warna", Contact: "0813-2222-1111", Address: "Jl. Pasar Baru No. 3"},
}

var products = []productSeed{
	{
		sku: "SMN-TR-40", name: "Semen Tiga Roda 40kg", category: "Semen", supplier: "PT Semen Nusantara Distribusi",
		baseUnit: "sak", cost: 58000, stock: 25, minStock: 10,
		units: []unitSeed{{"sak", 65000, "1"}, {"kg", 1625, "0.025"}},
	},
	{
		sku: "BSI-BT-10", name: "Besi Beton 10mm", category: "Besi & Baja", supplier: "CV Baja Makmur",
		baseUnit: "batang", cost: 72000, stock: 120, minStock: 30,
		units: []unitSeed{{"batang", 82000, "1"}},
	},
	{
		sku: "CAT-DLX-5", name: "Cat Tembok Dulux 5kg", category: "Cat & Alat Cat", supplier: "UD Sumber Warna",
		baseUnit: "galon", cost: 215000, stock: 12, minStock: 5,
		units: []unitSeed{{"galon", 245000, "1"}},
	},
	{
		sku: "PAK-5CM", name: "Paku 5cm", category: "Paku & Kawat", supplier: "CV Baja Makmur",
		baseUnit: "kg", cost: 16000, stock: 40, minStock: 10,
		units: []unitSeed{{"kg", 20000, "1"}, {"1/2 kg", 10500, "0.5"}, {"1/4 kg", 5500, "0.25"}},
	},
	{
		sku: "KWT-BWG16", name: "Kawat Bendrat BWG 16", category: "Paku & Kawat", supplier: "CV Baja Makmur",
		baseUnit: "roll", cost: 240000, stock: 6, minStock: 5,
		units: []unitSeed{{"roll", 275000, "1"}, {"kg", 14500, "0.05"}},
	},
	{
		sku: "KUS-3IN", name: "Kuas Cat 3 inch", category: "Cat & Alat Cat", supplier: "UD Sumber Warna",
		baseUnit: "pcs", cost: 9000, stock: 36, minStock: 12,
		units: []unitSeed{{"pcs", 15000, "1"}, {"lusin", 165000, "12"}},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	db, err := database.Connect(database.Options{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN(cfg.App.TimeZone),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(db, model.All()...); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	catalog := service.NewCatalogService(productRepo, categoryRepo, supplierRepo, db, nil, log)

	userService := service.NewUserService(repository.NewUserRepo(db), repository.NewPrivilegeRepo(db), repository.NewRoleRepo(db))
	if _, err := userService.EnsureOwner(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		log.WithError(err).Fatal("failed to seed owner account")
	}

	categoryIDs := make(map[string]uuid.UUID)
	for i := range categories {
		req := &categories[i]
		if existing, err := categoryRepo.FindByName(req.Name); err == nil {
			categoryIDs[req.Name] = existing.ID
			continue
		}
		c, err := catalog.CreateCategory(req, service.SystemActor)
		if err != nil {
			log.WithError(err).Fatalf("category %s", req.Name)
		}
		categoryIDs[c.Name] = c.ID
	}

	supplierIDs := make(map[string]uuid.UUID)
	existingSuppliers, err := catalog.ListSuppliers("")
	if err != nil {
		log.WithError(err).Fatal("failed to list suppliers")
	}
	for _, s := range existingSuppliers {
		supplierIDs[s.Name] = s.ID
	}
	for i := range suppliers {
		req := &suppliers[i]
		if _, ok := supplierIDs[req.Name]; ok {
			continue
		}
		s, err := catalog.CreateSupplier(req, service.SystemActor)
		if err != nil {
			log.WithError(err).Fatalf("supplier %s", req.Name)
		}
		supplierIDs[s.Name] = s.ID
	}

	var created int
	for _, p := range products {
		supplierID := supplierIDs[p.supplier]
		req := &service.CreateProductRequest{
			Name:       p.name,
			SKU:        p.sku,
			CategoryID: categoryIDs[p.category],
			SupplierID: &supplierID,
			Cost:       decimal.NewFromInt(p.cost),
			Stock:      decimal.NewFromInt(p.stock),
			MinStock:   decimal.NewFromInt(p.minStock),
			BaseUnit:   p.baseUnit,
		}
		for _, u := range p.units {
			req.Units = append(req.Units, service.UnitRequest{
				Name:           u.name,
				Price:          decimal.NewFromInt(u.price),
				ConversionRate: decimal.RequireFromString(u.rate),
				IsBaseUnit:     u.rate == "1" && u.name == p.baseUnit,
			})
		}

		if _, err := catalog.CreateProduct(req, service.SystemActor); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				log.WithField("sku", p.sku).Debug("product already seeded")
				continue
			}
			log.WithError(err).Fatalf("product %s", p.sku)
		}
		created++
	}

	log.WithFields(logrus.Fields{
		"categories": len(categoryIDs),
		"suppliers":  len(supplierIDs),
		"products":   created,
	}).Info("demo catalog seeded")
}
