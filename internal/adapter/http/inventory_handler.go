package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

// InventoryHandler exposes the stock ledger to trusted internal callers
// (catalog admin, fulfillment restock).
type InventoryHandler struct {
	ledger *usecase.StockLedger
}

func NewInventoryHandler(ledger *usecase.StockLedger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

type adjustStockReq struct {
	Delta int `json:"delta"`
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req adjustStockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	newQty, err := h.ledger.Adjust(ctx, c.Param("productId"), req.Delta)
	if err != nil {
		var stockErr *usecase.InsufficientStockError
		switch {
		case errors.Is(err, usecase.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
		case errors.As(err, &stockErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":     "insufficient_stock",
				"requested": stockErr.Requested,
				"available": stockErr.Available,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"stockQuantity": newQty})
}
