// Package repotest opens a migrated in-memory sqlite database for tests.
package repotest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"animal-shelter/internal/core/database"
	"animal-shelter/internal/repo"
)

func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          ":memory:?_foreign_keys=on",
		MaxOpenConns: 1, // 每个连接都是独立的内存库
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewFileDB 文件库 + 多连接，用于并发用例；写事务 BEGIN IMMEDIATE，
// 冲突方等待 busy_timeout 而不是立刻报 database is locked
func NewFileDB(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "shelter.db") +
		"?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=10000"
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          dsn,
		MaxOpenConns: conns,
		MaxIdleConns: conns,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func NewStore(t testing.TB) *repo.Store {
	return repo.NewStore(NewDB(t))
}
