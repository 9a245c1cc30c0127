package main

import (
	"toko-bangunan-pos/internal/handler"
	mw "toko-bangunan-pos/internal/middleware"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type routes struct {
	auth      *handler.AuthHandler
	users     *handler.UserHandler
	roles     *handler.RoleHandler
	catalog   *handler.CatalogHandler
	stock     *handler.StockHandler
	txns      *handler.TransactionHandler
	debts     *handler.DebtHandler
	dashboard *handler.DashboardHandler
	reports   *handler.ReportHandler

	requireAuth fiber.Handler
	wsHub       *ws.Hub
}

func registerRoutes(app *fiber.App, r routes) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", r.auth.Login)
	auth.Post("/validate-token", r.auth.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", r.requireAuth)

	protected.Get("/auth/me", r.auth.Me)
	protected.Post("/auth/change-password", r.auth.ChangePassword)
	protected.Post("/auth/logout", r.auth.Logout)

	// Dashboard
	protected.Get("/dashboard/stats", r.dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", r.dashboard.GetStockMovement)

	// Catalog: every signed-in cashier can read it
	protected.Get("/products", r.catalog.GetProducts)
	protected.Get("/products/:id", r.catalog.GetProduct)
	protected.Post("/products", mw.RequirePrivilege(model.PrivProductCreate), r.catalog.CreateProduct)
	protected.Put("/products/:id", mw.RequirePrivilege(model.PrivProductUpdate), r.catalog.UpdateProduct)
	protected.Delete("/products/:id", mw.RequirePrivilege(model.PrivProductDelete), r.catalog.DeleteProduct)

	protected.Get("/categories", r.catalog.GetCategories)
	protected.Get("/categories/:id", r.catalog.GetCategory)
	protected.Post("/categories", mw.RequirePrivilege(model.PrivCategoryManage), r.catalog.CreateCategory)
	protected.Put("/categories/:id", mw.RequirePrivilege(model.PrivCategoryManage), r.catalog.UpdateCategory)
	protected.Delete("/categories/:id", mw.RequirePrivilege(model.PrivCategoryManage), r.catalog.DeleteCategory)

	protected.Get("/suppliers", r.catalog.GetSuppliers)
	protected.Get("/suppliers/:id", r.catalog.GetSupplier)
	protected.Post("/suppliers", mw.RequirePrivilege(model.PrivSupplierManage), r.catalog.CreateSupplier)
	protected.Put("/suppliers/:id", mw.RequirePrivilege(model.PrivSupplierManage), r.catalog.UpdateSupplier)
	protected.Delete("/suppliers/:id", mw.RequirePrivilege(model.PrivSupplierManage), r.catalog.DeleteSupplier)

	// Stock
	protected.Post("/stock/adjust", mw.RequirePrivilege(model.PrivStockAdjust), r.stock.Adjust)
	protected.Get("/stock/low", r.stock.LowStock)
	protected.Get("/stock/movements", r.stock.Movements)
	protected.Get("/stock/stats", r.stock.Stats)

	// Transactions
	view := mw.RequirePrivilege(model.PrivTransactionView)
	protected.Get("/transactions", view, r.txns.List)
	protected.Get("/transactions/stats", view, r.txns.Stats)
	protected.Get("/transactions/daily", view, r.txns.Daily)
	protected.Get("/transactions/receipt/:number", view, r.txns.GetByReceipt)
	protected.Get("/transactions/:id", view, r.txns.Get)
	protected.Post("/transactions", mw.RequirePrivilege(model.PrivTransactionCreate), r.txns.Create)
	protected.Put("/transactions/:id", mw.RequirePrivilege(model.PrivTransactionCreate), r.txns.Update)
	protected.Post("/transactions/:id/cancel", mw.RequirePrivilege(model.PrivTransactionCancel), r.txns.Cancel)
	protected.Post("/transactions/:id/payments", mw.RequirePrivilege(model.PrivDebtPay), r.txns.AddPayment)

	// Debts
	protected.Get("/debts", view, r.debts.List)
	protected.Get("/debts/summary", view, r.debts.Summary)
	protected.Get("/debts/customer/:name", view, r.debts.ByCustomer)
	protected.Get("/debts/:id", view, r.debts.Get)
	protected.Post("/debts/:id/payments", mw.RequirePrivilege(model.PrivDebtPay), r.debts.Pay)

	// Reports
	reports := protected.Group("/reports", mw.RequirePrivilege(model.PrivReportView))
	reports.Get("/stock.xlsx", r.reports.Stock)
	reports.Get("/sales.xlsx", r.reports.Sales)

	// User Management
	protected.Get("/users", mw.RequirePrivilege(model.PrivUserView), r.users.GetUsers)
	protected.Get("/users/:id", mw.RequirePrivilege(model.PrivUserView), r.users.GetUser)
	protected.Post("/users", mw.RequirePrivilege(model.PrivUserManage), r.users.CreateUser)
	protected.Put("/users/:id", mw.RequirePrivilege(model.PrivUserManage), r.users.UpdateUser)
	protected.Delete("/users/:id", mw.RequirePrivilege(model.PrivUserManage), r.users.DeleteUser)
	protected.Put("/users/:id/privileges", mw.RequirePrivilege(model.PrivUserManage), r.users.UpdateUserPrivileges)

	protected.Get("/roles", r.roles.GetRoles)
	protected.Get("/privileges", r.roles.GetPrivileges)

	// WebSocket: dashboards sign in with ?token= on the handshake
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", r.requireAuth, websocket.New(r.wsHub.Serve))
}
