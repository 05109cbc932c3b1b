package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/store_api/internal/db"
	"github.com/Skotchmaster/store_api/internal/logging"
	"github.com/Skotchmaster/store_api/internal/middleware/auth"
)

type Deps struct {
	UsersHandler   *UsersHTTP
	ProductHandler *ProductHTTP
	CartHandler    *CartHTTP
	Auth           *auth.BearerAuth
	DB             *gorm.DB
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx, d.DB); err != nil {
			logging.FromContext(ctx).Error("readiness_failed", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	e.POST("/users/register", d.UsersHandler.Register)
	e.POST("/users/login", d.UsersHandler.Login)
	e.POST("/token", d.UsersHandler.Login)

	products := e.Group("/product")
	products.GET("", d.ProductHandler.GetProducts, d.Auth.OptionalAuth)
	products.GET("/search", d.ProductHandler.SearchProducts, d.Auth.OptionalAuth)
	products.GET("/:id", d.ProductHandler.GetProduct, d.Auth.OptionalAuth)

	products.POST("", d.ProductHandler.CreateProduct, d.Auth.RequireAdmin)
	products.PATCH("/:id", d.ProductHandler.PatchProduct, d.Auth.RequireAdmin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.Auth.RequireAdmin)

	cart := e.Group("/cart", d.Auth.RequireActive)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.PATCH("/add/:id", d.CartHandler.IncrementLine)
	cart.PATCH("/sub/:id", d.CartHandler.DecrementLine)
	cart.DELETE("/:id", d.CartHandler.RemoveLine)
}
