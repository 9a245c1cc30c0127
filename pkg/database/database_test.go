package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestConnect_SQLiteEnforcesForeignKeys(t *testing.T) {
	db, err := Connect(Options{Driver: "sqlite", DSN: "file::memory:", LogLevel: logger.Silent})
	require.NoError(t, err)

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect(Options{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
