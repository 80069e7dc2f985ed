package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/premstore/storebot/internal/logging"
	"github.com/premstore/storebot/internal/models"
	"github.com/premstore/storebot/internal/orders"
)

// StatusNotifier tells the customer about an order status change. The bot
// front-end implements it; a nil notifier disables notifications.
type StatusNotifier interface {
	NotifyOrderStatus(ctx context.Context, o *models.Order)
}

type OrderHandler struct {
	Orders   *orders.Service
	Notifier StatusNotifier
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list")

	var f orders.Filter
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			l.Warn("list_orders_failed", "status", 400, "reason", "user_id is not an integer")
			return errorResponse(c, http.StatusBadRequest, "invalid user_id")
		}
		f.UserID = id
	}
	f.Status = c.QueryParam("status")

	list, err := h.Orders.List(ctx, f)
	if err != nil {
		return storeError(c, l, "list_orders_failed", err, "")
	}
	if list == nil {
		list = []models.Order{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.get")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("get_order_failed", "status", 400, "reason", "id is not an integer")
		return errorResponse(c, http.StatusBadRequest, "invalid order id")
	}

	o, err := h.Orders.Get(ctx, id)
	if err != nil {
		return storeError(c, l, "get_order_failed", err, "Order not found")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.set_status")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("set_order_status_failed", "status", 400, "reason", "id is not an integer")
		return errorResponse(c, http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("set_order_status_failed", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	o, err := h.Orders.SetStatus(ctx, id, req.Status)
	if err != nil {
		return storeError(c, l, "set_order_status_failed", err, "Order not found")
	}

	if h.Notifier != nil {
		h.Notifier.NotifyOrderStatus(ctx, o)
	}

	l.Info("set_order_status_success", "order_id", o.ID, "order_status", o.Status)
	return c.JSON(http.StatusOK, o)
}
