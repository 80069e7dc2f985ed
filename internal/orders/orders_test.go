package orders

import (
	"context"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/premstore/storebot/internal/catalog"
	"github.com/premstore/storebot/internal/models"
	"github.com/premstore/storebot/internal/storage"
	"github.com/premstore/storebot/internal/store"
)

type testEnv struct {
	orders  *Service
	catalog *catalog.Service
	dir     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	st, err := storage.NewJSONStore(dir)
	require.NoError(t, err)
	cat := catalog.NewService(st)
	return &testEnv{orders: NewService(st, cat), catalog: cat, dir: dir}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func (e *testEnv) addProduct(t *testing.T, name, price string, stock int, variants ...models.Variant) *models.Product {
	t.Helper()
	p, err := e.catalog.Create(context.Background(), catalog.CreateRequest{
		Name:        name,
		Description: "d",
		Price:       dec(price),
		Category:    "misc",
		Stock:       stock,
		Variants:    variants,
	})
	require.NoError(t, err)
	return p
}

func TestCreateComputesTotalsFromCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	widget := env.addProduct(t, "Widget", "9.99", 5)
	plan := env.addProduct(t, "Plan", "10.00", 0,
		models.Variant{Name: "annual", Price: decimal.RequireFromString("99.00"), Stock: 3})

	o, err := env.orders.Create(ctx, 42, "Alice", []ItemRequest{
		{ProductID: widget.ID, Quantity: 2},
		{ProductID: plan.ID, VariantID: plan.Variants[0].ID, Quantity: 1},
	})
	require.NoError(t, err)

	require.Equal(t, models.OrderStatusPending, o.Status)
	require.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`), o.OrderNumber)
	require.Equal(t, int64(42), o.UserID)
	require.Len(t, o.Items, 2)

	require.True(t, o.Items[0].LineTotal.Equal(decimal.RequireFromString("19.98")))
	require.Equal(t, "Widget", o.Items[0].ProductName)
	require.True(t, o.Items[1].UnitPrice.Equal(decimal.RequireFromString("99.00")))
	require.Equal(t, "annual", o.Items[1].Variant)
	require.True(t, o.Total.Equal(decimal.RequireFromString("118.98")))
}

func TestCreateUsesCurrentPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.addProduct(t, "Widget", "10.00", 5)

	first, err := env.orders.Create(ctx, 1, "A", []ItemRequest{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	newPrice := decimal.RequireFromString("15.00")
	_, err = env.catalog.Update(ctx, p.ID, catalog.UpdateRequest{Price: &newPrice})
	require.NoError(t, err)

	second, err := env.orders.Create(ctx, 1, "A", []ItemRequest{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	require.True(t, first.Total.Equal(decimal.RequireFromString("10.00")))
	require.True(t, second.Total.Equal(newPrice), "line totals come from the catalog at creation time")
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.addProduct(t, "Widget", "1.00", 5)

	_, err := env.orders.Create(ctx, 1, "A", nil)
	require.ErrorIs(t, err, store.ErrValidation)

	_, err = env.orders.Create(ctx, 1, "A", []ItemRequest{{ProductID: p.ID, Quantity: 0}})
	require.ErrorIs(t, err, store.ErrValidation)

	_, err = env.orders.Create(ctx, 1, "A", []ItemRequest{{ProductID: 999, Quantity: 1}})
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = env.orders.Create(ctx, 1, "A", []ItemRequest{{ProductID: p.ID, VariantID: 9, Quantity: 1}})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.addProduct(t, "Widget", "1.00", 50)

	for _, userID := range []int64{1, 2, 1} {
		_, err := env.orders.Create(ctx, userID, "u", []ItemRequest{{ProductID: p.ID, Quantity: 1}})
		require.NoError(t, err)
	}
	_, err := env.orders.SetStatus(ctx, 2, models.OrderStatusConfirmed)
	require.NoError(t, err)

	all, err := env.orders.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, int64(3), all[0].ID, "newest first")

	mine, err := env.orders.List(ctx, Filter{UserID: 1})
	require.NoError(t, err)
	require.Len(t, mine, 2)

	confirmed, err := env.orders.List(ctx, Filter{Status: models.OrderStatusConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	require.Equal(t, int64(2), confirmed[0].ID)

	both, err := env.orders.List(ctx, Filter{UserID: 2, Status: models.OrderStatusConfirmed})
	require.NoError(t, err)
	require.Len(t, both, 1)

	none, err := env.orders.List(ctx, Filter{UserID: 2, Status: models.OrderStatusShipped})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSetStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.addProduct(t, "Widget", "1.00", 5)

	o, err := env.orders.Create(ctx, 1, "A", []ItemRequest{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	for _, status := range []string{
		models.OrderStatusConfirmed,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		got, err := env.orders.SetStatus(ctx, o.ID, status)
		require.NoError(t, err)
		require.Equal(t, status, got.Status)
	}

	_, err = env.orders.SetStatus(ctx, o.ID, models.OrderStatusPending)
	require.ErrorIs(t, err, store.ErrConflict, "delivered is terminal")

	_, err = env.orders.SetStatus(ctx, o.ID, "archived")
	require.ErrorIs(t, err, store.ErrValidation)

	_, err = env.orders.SetStatus(ctx, 999, models.OrderStatusConfirmed)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrdersSurviveReload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.addProduct(t, "Widget", "9.99", 5)

	created, err := env.orders.Create(ctx, 7, "Bob", []ItemRequest{{ProductID: p.ID, Quantity: 3}})
	require.NoError(t, err)

	st, err := storage.NewJSONStore(env.dir)
	require.NoError(t, err)
	reloaded := NewService(st, catalog.NewService(st))

	got, err := reloaded.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.OrderNumber, got.OrderNumber)
	require.True(t, created.Total.Equal(got.Total))
	require.Len(t, got.Items, 1)
	require.Equal(t, 3, got.Items[0].Quantity)
}
