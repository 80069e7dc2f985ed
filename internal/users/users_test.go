package users

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/premstore/storebot/internal/storage"
	"github.com/premstore/storebot/internal/store"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := storage.NewJSONStore(dir)
	require.NoError(t, err)
	return NewService(st), dir
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestGetOrCreate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.GetOrCreate(ctx, 42, "Alice", "alice")
	require.NoError(t, err)
	require.Equal(t, int64(42), u.ID)
	require.True(t, u.Balance.IsZero())
	require.Equal(t, "Alice", u.FirstName)

	again, err := svc.GetOrCreate(ctx, 42, "Alicia", "")
	require.NoError(t, err)
	require.Equal(t, u.ID, again.ID)
	require.Equal(t, "Alicia", again.FirstName)
	require.Equal(t, "alice", again.Username, "empty username must not erase the stored one")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestAdjustBalance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, 7, "Bob", "bob")
	require.NoError(t, err)

	u, err := svc.AdjustBalance(ctx, 7, dec("100"))
	require.NoError(t, err)
	require.True(t, u.Balance.Equal(dec("100")))

	u, err = svc.AdjustBalance(ctx, 7, dec("-30.50"))
	require.NoError(t, err)
	require.True(t, u.Balance.Equal(dec("69.50")))
}

func TestAdjustBalanceNeverGoesNegative(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, 7, "Bob", "bob")
	require.NoError(t, err)
	_, err = svc.AdjustBalance(ctx, 7, dec("10"))
	require.NoError(t, err)

	path := filepath.Join(dir, storage.DocUsers)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = svc.AdjustBalance(ctx, 7, dec("-10.01"))
	require.ErrorIs(t, err, store.ErrInsufficientFunds)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after, "failed adjustment must not touch the document")

	u, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, u.Balance.Equal(dec("10")))
}

func TestAdjustBalanceUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AdjustBalance(context.Background(), 999, dec("5"))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreditTracksLifetimeDeposits(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, 1, "A", "a")
	require.NoError(t, err)

	u, err := svc.Credit(ctx, 1, dec("50"))
	require.NoError(t, err)
	require.True(t, u.Balance.Equal(dec("50")))
	require.True(t, u.TotalDeposited.Equal(dec("50")))

	_, err = svc.Credit(ctx, 1, dec("0"))
	require.ErrorIs(t, err, store.ErrValidation)
}

func TestSpend(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, 1, "A", "a")
	require.NoError(t, err)
	_, err = svc.Credit(ctx, 1, dec("100"))
	require.NoError(t, err)

	u, err := svc.Spend(ctx, 1, dec("39.98"))
	require.NoError(t, err)
	require.True(t, u.Balance.Equal(dec("60.02")))
	require.True(t, u.TotalSpent.Equal(dec("39.98")))
	require.Equal(t, 1, u.OrderCount)

	_, err = svc.Spend(ctx, 1, dec("1000"))
	require.ErrorIs(t, err, store.ErrInsufficientFunds)
}

func TestBalanceSurvivesReload(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, 9, "C", "c")
	require.NoError(t, err)
	_, err = svc.AdjustBalance(ctx, 9, dec("12.34"))
	require.NoError(t, err)

	st, err := storage.NewJSONStore(dir)
	require.NoError(t, err)
	reloaded := NewService(st)

	u, err := reloaded.Get(ctx, 9)
	require.NoError(t, err)
	require.True(t, u.Balance.Equal(dec("12.34")))
}

func TestTopSpenders(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i, amount := range []string{"10", "300", "50"} {
		id := int64(i + 1)
		_, err := svc.GetOrCreate(ctx, id, "u", "u")
		require.NoError(t, err)
		_, err = svc.Credit(ctx, id, dec("1000"))
		require.NoError(t, err)
		_, err = svc.Spend(ctx, id, dec(amount))
		require.NoError(t, err)
	}

	top, err := svc.TopSpenders(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, int64(2), top[0].ID)
	require.Equal(t, int64(3), top[1].ID)
}
