package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_api/internal/logging"
	"github.com/Skotchmaster/store_api/internal/middleware/auth"
	"github.com/Skotchmaster/store_api/internal/service"
	"github.com/Skotchmaster/store_api/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	view, err := h.Svc.GetCart(ctx, auth.UserFrom(c))
	if err != nil {
		return failed(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "add_to_cart_error", err)
	}

	view, err := h.Svc.AddProduct(ctx, auth.UserFrom(c), req)
	if err != nil {
		return failed(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "product_id", req.ProductID)
	return c.JSON(http.StatusCreated, view)
}

func (h *CartHTTP) IncrementLine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.increment")

	id, err := pathID(c, l, "increment_line_error")
	if err != nil {
		return err
	}

	res, err := h.Svc.IncrementLine(ctx, auth.UserFrom(c), id)
	if err != nil {
		return failed(l, "increment_line_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CartHTTP) DecrementLine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.decrement")

	id, err := pathID(c, l, "decrement_line_error")
	if err != nil {
		return err
	}

	res, err := h.Svc.DecrementLine(ctx, auth.UserFrom(c), id)
	if err != nil {
		return failed(l, "decrement_line_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CartHTTP) RemoveLine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id, err := pathID(c, l, "remove_line_error")
	if err != nil {
		return err
	}

	res, err := h.Svc.RemoveLine(ctx, auth.UserFrom(c), id)
	if err != nil {
		return failed(l, "remove_line_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	res, err := h.Svc.Clear(ctx, auth.UserFrom(c))
	if err != nil {
		return failed(l, "clear_cart_error", err)
	}

	l.Info("clear_cart_success")
	return c.JSON(http.StatusOK, res)
}
