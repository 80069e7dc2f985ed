package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/premstore/storebot/internal/deposits"
	"github.com/premstore/storebot/internal/logging"
	"github.com/premstore/storebot/internal/models"
)

type DepositHandler struct {
	Deposits *deposits.Service
}

func (h *DepositHandler) GetDeposits(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "deposits.list")

	var f deposits.Filter
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			l.Warn("list_deposits_failed", "status", 400, "reason", "user_id is not an integer")
			return errorResponse(c, http.StatusBadRequest, "invalid user_id")
		}
		f.UserID = id
	}
	f.Status = c.QueryParam("status")

	list, err := h.Deposits.List(ctx, f)
	if err != nil {
		return storeError(c, l, "list_deposits_failed", err, "")
	}
	if list == nil {
		list = []models.Deposit{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *DepositHandler) ApproveDeposit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "deposits.approve")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("approve_deposit_failed", "status", 400, "reason", "id is not an integer")
		return errorResponse(c, http.StatusBadRequest, "invalid deposit id")
	}

	d, err := h.Deposits.Approve(ctx, id)
	if err != nil {
		return storeError(c, l, "approve_deposit_failed", err, "Deposit not found")
	}

	l.Info("approve_deposit_success", "deposit_id", d.ID, "amount", d.Amount.StringFixed(2))
	return c.JSON(http.StatusOK, d)
}

func (h *DepositHandler) RejectDeposit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "deposits.reject")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("reject_deposit_failed", "status", 400, "reason", "id is not an integer")
		return errorResponse(c, http.StatusBadRequest, "invalid deposit id")
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("reject_deposit_failed", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	d, err := h.Deposits.Reject(ctx, id, req.Note)
	if err != nil {
		return storeError(c, l, "reject_deposit_failed", err, "Deposit not found")
	}

	l.Info("reject_deposit_success", "deposit_id", d.ID)
	return c.JSON(http.StatusOK, d)
}
