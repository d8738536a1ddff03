package api

import (
	"errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storebot/internal/catalog"
	"storebot/internal/models"
	"storebot/internal/shop"
)

// CatalogHandler exposes the catalog engine to staff tools.
type CatalogHandler struct {
	engine *catalog.Engine
	shop   *shop.Service
	logger *zap.Logger
}

func NewCatalogHandler(engine *catalog.Engine, svc *shop.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{engine: engine, shop: svc, logger: logger}
}

// Handle routes catalog API requests.
// POST /api/catalog
func (h *CatalogHandler) Handle(c echo.Context) error {
	var req models.CatalogRequest
	if err := bindAction(c, &req, func() string { return req.Actions }); err != nil {
		return errorResponse(c, "Invalid request body")
	}

	switch req.Actions {
	case "categories":
		return h.options(c, catalog.Category, nil, req.Page)
	case "options":
		dim, err := catalog.ParseDimension(req.Dimension)
		if err != nil {
			return errorResponse(c, err.Error())
		}
		sel, err := catalog.FromStrings(req.Selection)
		if err != nil {
			return errorResponse(c, err.Error())
		}
		return h.options(c, dim, sel, req.Page)
	case "next":
		return h.next(c, req)
	case "products":
		return h.products(c, req)
	case "product":
		return h.product(c, req)
	case "product_active":
		return h.productActive(c, req)
	default:
		return errorResponse(c, "Unknown action: "+req.Actions)
	}
}

func (h *CatalogHandler) options(c echo.Context, dim catalog.Dimension, sel catalog.Selection, page int) error {
	opts, err := h.engine.Options(dim, sel, page)
	if errors.Is(err, catalog.ErrNoCategory) {
		return errorResponse(c, "selection.category is required")
	}
	if err != nil {
		h.logger.Error("Failed to list options", zap.String("dimension", string(dim)), zap.Error(err))
		return errorResponse(c, "Failed to retrieve options")
	}
	return successResponse(c, "Successful", opts)
}

// next resolves a selection the way the bot does. Without a category the
// step is the category menu.
func (h *CatalogHandler) next(c echo.Context, req models.CatalogRequest) error {
	sel, err := catalog.FromStrings(req.Selection)
	if err != nil {
		return errorResponse(c, err.Error())
	}
	step, err := h.engine.Next(sel)
	if err != nil {
		h.logger.Error("Failed to resolve catalog step", zap.Error(err))
		return errorResponse(c, "Failed to resolve selection")
	}
	return successResponse(c, "Successful", step)
}

func (h *CatalogHandler) products(c echo.Context, req models.CatalogRequest) error {
	sel, err := catalog.FromStrings(req.Selection)
	if err != nil {
		return errorResponse(c, err.Error())
	}
	if !sel.Has(catalog.Category) {
		return errorResponse(c, "selection.category is required")
	}
	page, err := h.engine.Products(sel, req.Page)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		return errorResponse(c, "Failed to retrieve products")
	}
	return successResponse(c, "Successful", page)
}

func (h *CatalogHandler) product(c echo.Context, req models.CatalogRequest) error {
	if req.ID == 0 {
		return errorResponse(c, "id is required")
	}
	p, err := h.shop.Product(req.ID)
	if err != nil {
		return errorResponse(c, "Product not found")
	}
	return successResponse(c, "Successful", map[string]interface{}{
		"product": p,
		"name":    p.DisplayName(),
		"text":    shop.FormatProduct(p),
	})
}

func (h *CatalogHandler) productActive(c echo.Context, req models.CatalogRequest) error {
	if req.ID == 0 || req.Active == nil {
		return errorResponse(c, "id and active are required")
	}
	p, err := h.shop.SetProductActive(req.ID, *req.Active)
	if errors.Is(err, shop.ErrNotFound) {
		return errorResponse(c, "Product not found")
	}
	if err != nil {
		h.logger.Error("Failed to change product visibility", zap.Uint("product_id", req.ID), zap.Error(err))
		return errorResponse(c, "Failed to update product")
	}
	return successResponse(c, "Product updated", p)
}
