// Package testutil provides database fixtures for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hammerio/internal/db"
	"hammerio/internal/seed"
)

// NewDB returns a migrated, private in-memory SQLite database. The pool is
// capped at one connection, so code holding a transaction must not touch
// the outer handle until it commits.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gormDB, err := db.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

// NewSeededDB returns NewDB loaded with the seed fixtures.
func NewSeededDB(t testing.TB) *gorm.DB {
	t.Helper()

	gormDB := NewDB(t)
	require.NoError(t, seed.Populate(context.Background(), gormDB, false))
	return gormDB
}
