package queue

import (
	"context"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/logging"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

// PaymentProcessedHandler is the order-status updater consumer: it keeps the
// status read cache in step with payment outcomes.
type PaymentProcessedHandler struct {
	status usecase.StatusCache
}

func NewPaymentProcessedHandler(status usecase.StatusCache) *PaymentProcessedHandler {
	return &PaymentProcessedHandler{status: status}
}

func (h *PaymentProcessedHandler) HandleProcessed(ctx context.Context, msg usecase.PaymentProcessedMsg) error {
	if err := h.status.SetStatus(ctx, msg.OrderID, msg.Status); err != nil {
		return err
	}
	logging.FromCtx(ctx).Info("payment outcome applied to status cache",
		"order_id", msg.OrderID, "status", msg.Status, "txn_no", msg.TransactionNo)
	return nil
}
