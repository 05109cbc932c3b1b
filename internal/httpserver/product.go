package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_api/internal/logging"
	"github.com/Skotchmaster/store_api/internal/middleware/auth"
	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/service"
	"github.com/Skotchmaster/store_api/internal/transport"
	"github.com/Skotchmaster/store_api/internal/util"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	items, err := h.Svc.ListProducts(ctx, auth.UserFrom(c))
	if err != nil {
		return failed(l, "get_products_error", err)
	}

	return c.JSON(http.StatusOK, toProductResponses(items))
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := pathID(c, l, "get_product_error")
	if err != nil {
		return err
	}

	prod, err := h.Svc.GetProduct(ctx, id, auth.UserFrom(c))
	if err != nil {
		return failed(l, "get_product_error", err)
	}

	return c.JSON(http.StatusOK, toProductResponse(*prod))
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size, auth.UserFrom(c))
	if err != nil {
		return failed(l, "search_products_error", err)
	}

	_, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{
		Total:    total,
		Page:     page,
		Size:     limit,
		Products: toProductResponses(items),
	})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "create_product_error", err)
	}

	prod, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return failed(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, toProductResponse(*prod))
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := pathID(c, l, "patch_product_error")
	if err != nil {
		return err
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "patch_product_error", err)
	}

	prod, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return failed(l, "patch_product_error", err)
	}

	l.Info("patch_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, toProductResponse(*prod))
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := pathID(c, l, "delete_product_error")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return failed(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "product deleted"})
}

func toProductResponse(p models.Product) transport.ProductResponse {
	return transport.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toProductResponses(ps []models.Product) []transport.ProductResponse {
	out := make([]transport.ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductResponse(p))
	}
	return out
}
