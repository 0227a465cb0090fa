package queue

import (
	"context"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/logging"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

// OrderCreatedHandler is the notifier consumer: it seeds the status cache
// and hands the order off to the notification pipeline. Mail rendering is
// owned by the notification service; here we only record the request.
type OrderCreatedHandler struct {
	status usecase.StatusCache
}

func NewOrderCreatedHandler(status usecase.StatusCache) *OrderCreatedHandler {
	return &OrderCreatedHandler{status: status}
}

func (h *OrderCreatedHandler) HandleCreated(ctx context.Context, msg usecase.OrderCreatedMsg) error {
	if err := h.status.SetStatus(ctx, msg.OrderID, "PENDING"); err != nil {
		return err
	}
	logging.FromCtx(ctx).Info("order confirmation notification queued",
		"order_id", msg.OrderID, "user_id", msg.UserID, "total", msg.TotalAmount)
	return nil
}
