package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/premstore/storebot/internal/models"
	"github.com/premstore/storebot/internal/orders"
)

type fakeNotifier struct {
	mu    sync.Mutex
	calls []*models.Order
}

func (f *fakeNotifier) NotifyOrderStatus(_ context.Context, o *models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, o)
}

func TestGetOrdersWithFilters(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct("Widget", "5.00", 50)

	ctx := context.Background()
	for _, userID := range []int64{1, 2, 1} {
		_, err := env.Orders.Create(ctx, userID, "u", []orders.ItemRequest{{ProductID: p.ID, Quantity: 1}})
		require.NoError(t, err)
	}
	_, err := env.Orders.SetStatus(ctx, 1, models.OrderStatusShipped)
	require.NoError(t, err)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/orders", nil)
	require.NoError(t, env.Deps.Orders.GetOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 3)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/orders?user_id=1", nil)
	require.NoError(t, env.Deps.Orders.GetOrders(c))
	var mine []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 2)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/orders?status=shipped", nil)
	require.NoError(t, env.Deps.Orders.GetOrders(c))
	var shipped []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shipped))
	require.Len(t, shipped, 1)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/orders?user_id=abc", nil)
	require.NoError(t, env.Deps.Orders.GetOrders(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOrderStatusNotifiesCustomer(t *testing.T) {
	env := newTestEnv(t)
	notifier := &fakeNotifier{}
	env.Deps.Orders.Notifier = notifier

	p := env.seedProduct("Widget", "5.00", 50)
	o, err := env.Orders.Create(context.Background(), 42, "Alice", []orders.ItemRequest{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	id := strconv.FormatInt(o.ID, 10)

	rec, c := env.doJSONRequest(http.MethodPut, "/api/orders/"+id+"/status", map[string]string{"status": "confirmed"})
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, env.Deps.Orders.UpdateOrderStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, models.OrderStatusConfirmed, updated.Status)

	require.Len(t, notifier.calls, 1)
	require.Equal(t, o.ID, notifier.calls[0].ID)
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct("Widget", "5.00", 50)
	o, err := env.Orders.Create(context.Background(), 42, "Alice", []orders.ItemRequest{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	id := strconv.FormatInt(o.ID, 10)

	rec, c := env.doJSONRequest(http.MethodPut, "/api/orders/"+id+"/status", map[string]string{"status": "archived"})
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, env.Deps.Orders.UpdateOrderStatus(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOrderStatusTerminalConflict(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct("Widget", "5.00", 50)
	ctx := context.Background()
	o, err := env.Orders.Create(ctx, 42, "Alice", []orders.ItemRequest{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	_, err = env.Orders.SetStatus(ctx, o.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	id := strconv.FormatInt(o.ID, 10)

	rec, c := env.doJSONRequest(http.MethodPut, "/api/orders/"+id+"/status", map[string]string{"status": "pending"})
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, env.Deps.Orders.UpdateOrderStatus(c))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPut, "/api/orders/999/status", map[string]string{"status": "confirmed"})
	c.SetParamNames("id")
	c.SetParamValues("999")
	require.NoError(t, env.Deps.Orders.UpdateOrderStatus(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Order not found", decodeError(t, rec))
}
