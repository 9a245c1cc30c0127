package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"toko-bangunan-pos/internal/config"
	"toko-bangunan-pos/internal/handler"
	"toko-bangunan-pos/internal/jobs"
	"toko-bangunan-pos/internal/logging"
	"toko-bangunan-pos/internal/middleware"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/service"
	"toko-bangunan-pos/internal/ws"
	"toko-bangunan-pos/pkg/database"
	"toko-bangunan-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load Env
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	loc, err := time.LoadLocation(cfg.App.TimeZone)
	if err != nil {
		log.WithError(err).Warnf("unknown timezone %q, falling back to UTC", cfg.App.TimeZone)
		loc = time.UTC
	}

	// 2. Setup Database
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
	log.WithField("driver", cfg.Database.Driver).Info("database ready")

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	debtRepo := repository.NewDebtRepo(db)
	receiptRepo := repository.NewReceiptRepo()
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	tokens := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	catalogService := service.NewCatalogService(productRepo, categoryRepo, supplierRepo, db, wsHub, log)
	stockService := service.NewStockService(productRepo, movementRepo, db, wsHub, log)
	txService := service.NewTransactionService(txRepo, productRepo, debtRepo, receiptRepo, db, wsHub, log, loc)
	debtService := service.NewDebtService(debtRepo, txService)
	dashService := service.NewDashboardService(txRepo, productRepo, movementRepo, debtRepo, loc)
	reportService := service.NewReportService(productRepo, txRepo, loc)
	authService := service.NewAuthService(userRepo, tokens)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	// 5. Seed privileges, roles and the owner account
	created, err := userService.EnsureOwner(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
	if err != nil {
		log.WithError(err).Fatal("failed to seed owner account")
	}
	if created {
		log.WithField("username", cfg.Auth.AdminUsername).Warn("owner account created with the configured default password, change it")
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: middleware.ErrorHandler(log),
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	registerRoutes(app, routes{
		auth:        handler.NewAuthHandler(authService, userService),
		users:       handler.NewUserHandler(userService),
		roles:       handler.NewRoleHandler(userService),
		catalog:     handler.NewCatalogHandler(catalogService),
		stock:       handler.NewStockHandler(stockService, loc),
		txns:        handler.NewTransactionHandler(txService, loc),
		debts:       handler.NewDebtHandler(debtService),
		dashboard:   handler.NewDashboardHandler(dashService, stockService),
		reports:     handler.NewReportHandler(reportService, loc),
		requireAuth: middleware.RequireAuth(tokens, userRepo),
		wsHub:       wsHub,
	})

	// 8. Scheduled low-stock alert
	var lowStock *jobs.LowStockAlert
	if cfg.Jobs.LowStockCron != "" {
		lowStock = jobs.NewLowStockAlert(stockService, wsHub, log, cfg.Jobs.LowStockCron, loc)
		if err := lowStock.Start(); err != nil {
			log.WithError(err).Fatal("failed to start low stock job")
		}
	}

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.WithError(err).Panic("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if lowStock != nil {
		lowStock.Stop()
	}
	wsHub.Stop()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server exited")
}
