// Package repotest builds throwaway in-memory databases for tests.
package repotest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/pkg/db"
)

func InitTestDB(t testing.TB) *repo.GormRepo {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repo.New(gdb)
}

func Category(t testing.TB, r *repo.GormRepo, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, IsActive: true}
	require.NoError(t, r.CreateCategory(context.Background(), c))
	return c
}

// Product inserts an active product priced in whole rupees.
func Product(t testing.TB, r *repo.GormRepo, name string, price int64, stock, alert int, cat *models.Category) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:          name,
		Unit:          "piece",
		Price:         decimal.NewFromInt(price),
		CostPrice:     decimal.Zero,
		StockQuantity: stock,
		LowStockAlert: alert,
		IsActive:      true,
	}
	if cat != nil {
		p.CategoryID = &cat.ID
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}
