package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/adapter/http/middleware"
	domain "github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/entity"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/logging"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

type OrderHandler struct {
	create *usecase.CreateOrder
	query  usecase.OrderRepo
	status usecase.StatusCache
}

func NewOrderHandler(create *usecase.CreateOrder, query usecase.OrderRepo, status usecase.StatusCache) *OrderHandler {
	return &OrderHandler{create: create, query: query, status: status}
}

type createOrderReq struct {
	ShippingAddress string `json:"shippingAddress"`
}

// CreateOrder runs the checkout saga for the authenticated user's cart.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.create.Execute(ctx, usecase.CreateOrderInput{
		UserID:          middleware.UserID(c),
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		writeCreateOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, orderView(order))
}

func writeCreateOrderError(c *gin.Context, err error) {
	var stockErr *usecase.InsufficientStockError
	var prodErr *usecase.ProductInvalidError
	var qtyErr *usecase.InvalidQuantityError

	switch {
	case errors.Is(err, usecase.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart_empty"})
	case errors.As(err, &qtyErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "invalid_quantity",
			"productId": qtyErr.ProductID,
			"quantity":  qtyErr.Quantity,
		})
	case errors.As(err, &prodErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "product_invalid",
			"productId": prodErr.ProductID,
		})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":       "insufficient_stock",
			"productName": stockErr.ProductName,
			"requested":   stockErr.Requested,
			"available":   stockErr.Available,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	order, err := h.query.GetByID(ctx, c.Param("id"))
	if err != nil || order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if order.UserID != middleware.UserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, orderView(order))
}

// GetOrderStatus is the polling endpoint the storefront hits while waiting
// for a payment outcome. Cache hits never touch the database; order ids are
// unguessable UUIDs, so a hit skips the ownership lookup too.
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	id := c.Param("id")
	if cached, err := h.status.GetStatus(ctx, id); err == nil && cached != "" {
		c.JSON(http.StatusOK, gin.H{"orderId": id, "status": cached})
		return
	}

	order, err := h.query.GetByID(ctx, id)
	if err != nil || order == nil || order.UserID != middleware.UserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err := h.status.SetStatus(ctx, order.ID, string(order.Status)); err != nil {
		logging.From(c).Error("status cache warm failed", "order_id", order.ID, "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"orderId": order.ID, "status": string(order.Status)})
}

func orderView(o *domain.Order) gin.H {
	items := make([]gin.H, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, gin.H{
			"productId":   it.ProductID,
			"productName": it.ProductName,
			"quantity":    it.Quantity,
			"price":       it.Price.StringFixed(2),
		})
	}
	return gin.H{
		"id":              o.ID,
		"userId":          o.UserID,
		"status":          string(o.Status),
		"totalAmount":     o.TotalAmount.StringFixed(2),
		"shippingAddress": o.ShippingAddress,
		"items":           items,
		"createdAt":       o.CreatedAt,
	}
}
