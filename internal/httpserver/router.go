package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Version reported by the health endpoint.
const Version = "2.0"

type Deps struct {
	Products *ProductHandler
	Orders   *OrderHandler
	Deposits *DepositHandler
	Settings *SettingsHandler
	Auth     *AuthHandler // nil leaves the API open
	BotName  func() string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/healthz", func(c echo.Context) error {
		bot := "offline"
		if d.BotName != nil {
			if name := d.BotName(); name != "" {
				bot = name
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "OK", "bot": bot, "version": Version})
	})

	api := e.Group("/api")

	// The product list stays open: it is plain catalog data.
	api.GET("/products", d.Products.GetProducts)
	api.GET("/products/:id", d.Products.GetProduct)

	var guard []echo.MiddlewareFunc
	if d.Auth != nil {
		api.POST("/admin/login", d.Auth.Login)
		guard = append(guard, RequireAdmin(d.Auth.JWTSecret))
	}

	admin := api.Group("", guard...)
	admin.POST("/products", d.Products.CreateProduct)
	admin.PUT("/products/:id", d.Products.UpdateProduct)
	admin.DELETE("/products/:id", d.Products.DeleteProduct)

	admin.GET("/orders", d.Orders.GetOrders)
	admin.GET("/orders/:id", d.Orders.GetOrder)
	admin.PUT("/orders/:id/status", d.Orders.UpdateOrderStatus)

	admin.GET("/deposits", d.Deposits.GetDeposits)
	admin.POST("/deposits/:id/approve", d.Deposits.ApproveDeposit)
	admin.POST("/deposits/:id/reject", d.Deposits.RejectDeposit)

	admin.GET("/settings", d.Settings.GetSettings)
	admin.PUT("/settings", d.Settings.UpdateSettings)
}
