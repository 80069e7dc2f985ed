package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/premstore/storebot/internal/catalog"
	"github.com/premstore/storebot/internal/logging"
	"github.com/premstore/storebot/internal/models"
)

type ProductHandler struct {
	Catalog *catalog.Service
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.list")

	list, err := h.Catalog.List(ctx)
	if err != nil {
		return storeError(c, l, "list_products_failed", err, "")
	}
	if list == nil {
		list = []models.Product{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.get")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not an integer")
		return errorResponse(c, http.StatusBadRequest, "invalid product id")
	}

	p, err := h.Catalog.Get(ctx, id)
	if err != nil {
		return storeError(c, l, "get_product_failed", err, "Product not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.create")

	var req catalog.CreateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	p, err := h.Catalog.Create(ctx, req)
	if err != nil {
		return storeError(c, l, "create_product_failed", err, "")
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.update")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("update_product_failed", "status", 400, "reason", "id is not an integer")
		return errorResponse(c, http.StatusBadRequest, "invalid product id")
	}

	var req catalog.UpdateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	p, err := h.Catalog.Update(ctx, id, req)
	if err != nil {
		return storeError(c, l, "update_product_failed", err, "Product not found")
	}

	l.Info("update_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.delete")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("delete_product_failed", "status", 400, "reason", "id is not an integer")
		return errorResponse(c, http.StatusBadRequest, "invalid product id")
	}

	if err := h.Catalog.Delete(ctx, id); err != nil {
		return storeError(c, l, "delete_product_failed", err, "Product not found")
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
