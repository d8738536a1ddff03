package api

import (
	"errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storebot/internal/models"
	"storebot/internal/repository"
	"storebot/internal/shop"
)

// OrderHandler serves order listings and status changes.
type OrderHandler struct {
	shop   *shop.Service
	logger *zap.Logger
}

func NewOrderHandler(svc *shop.Service, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{shop: svc, logger: logger}
}

// Handle routes order API requests.
// POST /api/orders
func (h *OrderHandler) Handle(c echo.Context) error {
	var req models.OrdersRequest
	if err := bindAction(c, &req, func() string { return req.Actions }); err != nil {
		return errorResponse(c, "Invalid request body")
	}

	switch req.Actions {
	case "orders":
		return h.listOrders(c, req)
	case "order":
		return h.getOrder(c, req)
	case "order_status":
		return h.setStatus(c, req)
	case "statuses":
		return h.statuses(c)
	case "customers":
		return h.listCustomers(c, req)
	default:
		return errorResponse(c, "Unknown action: "+req.Actions)
	}
}

func pageArgs(req models.OrdersRequest) (int, int) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	return limit, page
}

func (h *OrderHandler) listOrders(c echo.Context, req models.OrdersRequest) error {
	limit, page := pageArgs(req)
	filter := repository.OrderFilter{StatusID: req.StatusID, CustomerID: req.CustomerID}
	orders, total, err := h.shop.AllOrders(limit, page, filter)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		return errorResponse(c, "Failed to retrieve orders")
	}
	return successResponse(c, "Successful", paginatedResponse(orders, total, page, limit))
}

func (h *OrderHandler) getOrder(c echo.Context, req models.OrdersRequest) error {
	if req.ID == 0 {
		return errorResponse(c, "id is required")
	}
	order, err := h.shop.Order(0, req.ID)
	if err != nil {
		return errorResponse(c, "Order not found")
	}
	return successResponse(c, "Successful", order)
}

func (h *OrderHandler) setStatus(c echo.Context, req models.OrdersRequest) error {
	if req.ID == 0 || req.StatusID == 0 {
		return errorResponse(c, "id and status_id are required")
	}
	order, err := h.shop.SetOrderStatus(req.ID, req.StatusID)
	if errors.Is(err, shop.ErrNotFound) {
		return errorResponse(c, "Order or status not found")
	}
	if err != nil {
		h.logger.Error("Failed to set order status", zap.Uint("order_id", req.ID), zap.Error(err))
		return errorResponse(c, "Failed to update order")
	}
	h.logger.Info("Order status changed via API",
		zap.Uint("order_id", order.ID),
		zap.String("status", order.StatusName()))
	return successResponse(c, "Status updated", order)
}

func (h *OrderHandler) statuses(c echo.Context) error {
	statuses, err := h.shop.Statuses()
	if err != nil {
		h.logger.Error("Failed to list statuses", zap.Error(err))
		return errorResponse(c, "Failed to retrieve statuses")
	}
	return successResponse(c, "Successful", statuses)
}

func (h *OrderHandler) listCustomers(c echo.Context, req models.OrdersRequest) error {
	limit, page := pageArgs(req)
	customers, total, err := h.shop.Customers(limit, page, req.Query)
	if err != nil {
		h.logger.Error("Failed to list customers", zap.Error(err))
		return errorResponse(c, "Failed to retrieve customers")
	}
	return successResponse(c, "Successful", paginatedResponse(customers, total, page, limit))
}
