package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/logging"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/pkg/database"
	"toko-bangunan-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
}

func call(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp.StatusCode, body
}

func TestErrorHandler(t *testing.T) {
	app := newApp()
	app.Get("/stock", func(c *fiber.Ctx) error {
		return fmt.Errorf("sale: %w", apperror.InsufficientStock("only 2 sak left"))
	})
	app.Get("/validation", func(c *fiber.Ctx) error {
		return apperror.Validation([]apperror.FieldError{{Field: "Quantity", Tag: "gt", Param: "0"}})
	})
	app.Get("/db", func(c *fiber.Ctx) error {
		return apperror.Internal(errors.New("pq: connection refused"), "failed to load products")
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("unexpected")
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "too big")
	})

	status, body := call(t, app, httptest.NewRequest(http.MethodGet, "/stock", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["kind"])
	assert.Equal(t, "only 2 sak left", body["error"])

	status, body = call(t, app, httptest.NewRequest(http.MethodGet, "/validation", nil))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["kind"])
	require.Len(t, body["fields"], 1)

	status, body = call(t, app, httptest.NewRequest(http.MethodGet, "/db", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["error"], "server faults are masked")

	status, body = call(t, app, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL", body["kind"])

	status, body = call(t, app, httptest.NewRequest(http.MethodGet, "/fiber", nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.Equal(t, "too big", body["error"])

	status, _ = call(t, app, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRequirePrivilege(t *testing.T) {
	app := newApp()
	grant := func(codes ...string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if len(codes) > 0 {
				c.Locals("user_privileges", codes)
			}
			return c.Next()
		}
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }

	app.Post("/cashier/adjust", grant(model.PrivTransactionCreate), RequirePrivilege(model.PrivStockAdjust), ok)
	app.Post("/owner/adjust", grant(model.PrivStockAdjust), RequirePrivilege(model.PrivStockAdjust), ok)
	app.Get("/anon", grant(), RequirePrivilege(model.PrivReportView), ok)
	app.Get("/any", grant(model.PrivDebtPay), RequireAnyPrivilege(model.PrivTransactionCancel, model.PrivDebtPay), ok)

	status, body := call(t, app, httptest.NewRequest(http.MethodPost, "/cashier/adjust", nil))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "requires 'stock:adjust' privilege", body["error"])

	status, _ = call(t, app, httptest.NewRequest(http.MethodPost, "/owner/adjust", nil))
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = call(t, app, httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, httptest.NewRequest(http.MethodGet, "/any", nil))
	assert.Equal(t, http.StatusNoContent, status)
}

func TestRequireAuth(t *testing.T) {
	db, err := database.Connect(database.Options{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	user := &model.User{
		Username:     "kasir1",
		Password:     "-",
		FullName:     "Kasir Satu",
		IsActive:     true,
		TokenVersion: "v2",
		Privileges:   []model.Privilege{{Code: model.PrivTransactionCreate, Name: "Create Transaction"}},
	}
	require.NoError(t, db.Create(user).Error)

	tokens := jwt.NewManager("secret", time.Hour)
	app := newApp()
	app.Get("/me", RequireAuth(tokens, repository.NewUserRepo(db)), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    c.Locals("user_id"),
			"user_name":  c.Locals("user_name"),
			"privileges": c.Locals("user_privileges"),
		})
	})

	request := func(header string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		return req
	}

	current, err := tokens.Generate(user.ID, user.Username, user.FullName, "CASHIER", nil, "v2")
	require.NoError(t, err)
	status, body := call(t, app, request("Bearer "+current))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, user.ID.String(), body["user_id"])
	assert.Equal(t, "Kasir Satu", body["user_name"])
	assert.Equal(t, []interface{}{model.PrivTransactionCreate}, body["privileges"])

	stale, err := tokens.Generate(user.ID, user.Username, user.FullName, "CASHIER", nil, "v1")
	require.NoError(t, err)
	status, body = call(t, app, request("Bearer "+stale))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["kind"])

	status, _ = call(t, app, request(""))
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, request("Token "+current))
	assert.Equal(t, http.StatusUnauthorized, status)

	handshake := httptest.NewRequest(http.MethodGet, "/me?token="+current, nil)
	handshake.Header.Set(fiber.HeaderUpgrade, "websocket")
	status, _ = call(t, app, handshake)
	assert.Equal(t, http.StatusOK, status, "websocket handshakes may carry the token in the query")

	status, _ = call(t, app, httptest.NewRequest(http.MethodGet, "/me?token="+current, nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	ghost, err := tokens.Generate(uuid.New(), "ghost", "Ghost", "CASHIER", nil, "v2")
	require.NoError(t, err)
	status, _ = call(t, app, request("Bearer "+ghost))
	assert.Equal(t, http.StatusUnauthorized, status)
}
