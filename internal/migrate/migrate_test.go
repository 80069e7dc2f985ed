package migrate

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/premstore/storebot/internal/models"
	"github.com/premstore/storebot/internal/storage"
)

func newTestMigrator(t *testing.T) (*Migrator, storage.Store, *gorm.DB) {
	t.Helper()

	st, err := storage.NewJSONStore(t.TempDir())
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	m := New(st, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return m, st, db
}

func seedDocuments(t *testing.T, st storage.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2025, 8, 14, 10, 0, 0, 0, time.UTC)

	require.NoError(t, st.Save(ctx, storage.DocProducts, []models.Product{
		{
			ID: 1, Name: "Premium Account", Price: decimal.NewFromFloat(49.99),
			Category: "Gaming", Stock: 10, CreatedAt: now,
			Variants: []models.Variant{
				{ID: 1, Name: "Silver", Price: decimal.NewFromInt(30), Stock: 5},
				{ID: 2, Name: "Gold", Price: decimal.NewFromInt(60), Stock: 5},
			},
		},
		{ID: 2, Name: "Gift Card", Price: decimal.NewFromInt(25), Category: "Cards", Stock: 3, CreatedAt: now},
	}))

	require.NoError(t, st.Save(ctx, storage.DocUsers, []models.User{
		{ID: 42, FirstName: "Alice", Username: "alice", Balance: decimal.NewFromInt(80),
			TotalDeposited: decimal.NewFromInt(100), TotalSpent: decimal.NewFromInt(20),
			OrderCount: 1, CreatedAt: now, LastActivity: now},
	}))

	require.NoError(t, st.Save(ctx, storage.DocOrders, []models.Order{
		{
			ID: 1, OrderNumber: "ORD-20250814-AB12CD34", UserID: 42, UserName: "@alice",
			Total: decimal.NewFromInt(20), Status: models.OrderStatusPending,
			CreatedAt: now, UpdatedAt: now,
			Items: []models.OrderItem{
				{ProductID: 2, ProductName: "Gift Card", Quantity: 1,
					UnitPrice: decimal.NewFromInt(25), LineTotal: decimal.NewFromInt(25)},
			},
		},
	}))

	require.NoError(t, st.Save(ctx, storage.DocDeposits, []models.Deposit{
		{ID: 1, UserID: 42, Amount: decimal.NewFromInt(100), Method: "manual",
			Status: models.DepositStatusCompleted, Reference: "DEP0001",
			CreatedAt: now, UpdatedAt: now},
	}))
}

func TestRunCopiesAllCollections(t *testing.T) {
	m, st, db := newTestMigrator(t)
	seedDocuments(t, st)

	r, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, r.Products)
	require.Equal(t, 1, r.Users)
	require.Equal(t, 1, r.Orders)
	require.Equal(t, 1, r.Deposits)
	require.Equal(t, 0, r.Skipped)

	var p Product
	require.NoError(t, db.Preload("Variants").First(&p, 1).Error)
	require.Equal(t, "Premium Account", p.Name)
	require.True(t, p.Price.Equal(decimal.NewFromFloat(49.99)))
	require.Len(t, p.Variants, 2)
	require.Equal(t, "Gold", p.Variants[1].Name)
	require.True(t, p.Variants[1].Price.Equal(decimal.NewFromInt(60)))

	var o Order
	require.NoError(t, db.Preload("Items").First(&o, 1).Error)
	require.Equal(t, "ORD-20250814-AB12CD34", o.OrderNumber)
	require.Len(t, o.Items, 1)
	require.True(t, o.Items[0].UnitPrice.Equal(decimal.NewFromInt(25)))

	var u User
	require.NoError(t, db.First(&u, 42).Error)
	require.True(t, u.Balance.Equal(decimal.NewFromInt(80)))

	var d Deposit
	require.NoError(t, db.First(&d, 1).Error)
	require.Equal(t, models.DepositStatusCompleted, d.Status)
}

func TestRunSkipsExistingRows(t *testing.T) {
	m, st, db := newTestMigrator(t)
	seedDocuments(t, st)

	_, err := m.Run(context.Background())
	require.NoError(t, err)

	r, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, r.Products)
	require.Equal(t, 0, r.Users)
	require.Equal(t, 0, r.Orders)
	require.Equal(t, 0, r.Deposits)
	require.Equal(t, 5, r.Skipped)

	var n int64
	require.NoError(t, db.Model(&Product{}).Count(&n).Error)
	require.EqualValues(t, 2, n)
	require.NoError(t, db.Model(&OrderItem{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestRunWithEmptyDocuments(t *testing.T) {
	m, _, _ := newTestMigrator(t)

	r, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, &Report{}, r)
}

func TestOpenSQLitePath(t *testing.T) {
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
}
