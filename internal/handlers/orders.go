package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hazemkhaled/digimarket/internal/models"
	"github.com/hazemkhaled/digimarket/internal/services"
	apperrors "github.com/hazemkhaled/digimarket/pkg/errors"
	"github.com/hazemkhaled/digimarket/pkg/logger"
	"github.com/hazemkhaled/digimarket/pkg/response"
)

// OrderHandler serves checkout and order history endpoints.
type OrderHandler struct {
	orders *services.OrderService
	notify *services.NotificationService
}

func NewOrderHandler(orders *services.OrderService, notify *services.NotificationService) *OrderHandler {
	return &OrderHandler{orders: orders, notify: notify}
}

type checkoutLinePayload struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type checkoutPayload struct {
	Items []checkoutLinePayload `json:"items" validate:"required,min=1,dive"`
}

// POST /api/orders
func (h *OrderHandler) Checkout(c *gin.Context) {
	uid := currentUserID(c)
	if uid == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req checkoutPayload
	if !bindAndValidate(c, &req) {
		return
	}

	lines := make([]services.CheckoutLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.CheckoutLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.orders.Checkout(requestContext(c), uid, lines)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Best effort; the order stands whether or not the mail lands.
	if h.notify != nil {
		if err := h.notify.SendPurchaseConfirmation(requestContext(c), uid, order); err != nil {
			logger.WithModule("orders").Warn("purchase confirmation email", zap.Error(err))
		}
		if err := h.notify.NotifyAdminsNewOrder(requestContext(c), uid, order); err != nil {
			logger.WithModule("orders").Warn("admin order alert", zap.Error(err))
		}
	}

	response.Success(c, http.StatusCreated, order)
}

// GET /api/orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	uid := currentUserID(c)
	if uid == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)

	orders, total, err := h.orders.ListForUser(requestContext(c), uid, services.ListOrdersOptions{
		Page:     page,
		PageSize: pageSize,
		Status:   models.OrderStatus(c.Query("status")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, orders, paginationMeta(page, pageSize, total))
}

// GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	uid := currentUserID(c)
	if uid == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	order, err := h.orders.Get(requestContext(c), c.Param("id"), uid)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}

// GET /api/admin/orders
func (h *OrderHandler) ListAll(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)

	orders, total, err := h.orders.ListAll(requestContext(c), services.ListOrdersOptions{
		Page:     page,
		PageSize: pageSize,
		Status:   models.OrderStatus(c.Query("status")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, orders, paginationMeta(page, pageSize, total))
}

type orderStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled"`
}

// PATCH /api/admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req orderStatusPayload
	if !bindAndValidate(c, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(requestContext(c), c.Param("id"), models.OrderStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}
