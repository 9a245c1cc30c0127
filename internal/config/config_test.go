package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "test.db")
	t.Setenv("JWT_TTL_HOURS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "test.db", cfg.Database.DSN(cfg.App.TimeZone))
	assert.Equal(t, 8*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "0 7 * * *", cfg.Jobs.LowStockCron)
}

func TestDSN_Postgres(t *testing.T) {
	db := DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", Name: "pos", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=pos sslmode=disable TimeZone=Asia/Jakarta", db.DSN("Asia/Jakarta"))

	db.URL = "postgres://u:p@db/pos"
	assert.Equal(t, "postgres://u:p@db/pos", db.DSN("UTC"))
}

func TestLoad_BadTTL(t *testing.T) {
	t.Setenv("JWT_TTL_HOURS", "soon")
	_, err := Load()
	assert.Error(t, err)
}
