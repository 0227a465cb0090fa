package kafka

import (
	"context"

	domain "github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/entity"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

// FulfillmentHandler applies delivery outcomes from the fulfillment service:
// PROCESSING -> COMPLETED on delivery, and cancellation from any
// non-terminal state.
type FulfillmentHandler struct {
	Repo  usecase.OrderRepo
	Cache usecase.StatusCache // optional
}

func NewFulfillmentHandler(repo usecase.OrderRepo, cache usecase.StatusCache) *FulfillmentHandler {
	return &FulfillmentHandler{Repo: repo, Cache: cache}
}

func (h *FulfillmentHandler) Handle(ctx context.Context, ev usecase.FulfillmentMsg) error {
	var moved bool
	var target domain.Status
	var err error

	switch ev.Status {
	case "DELIVERED":
		target = domain.StatusCompleted
		moved, err = h.Repo.UpdateStatusIf(ctx, ev.OrderID, domain.StatusProcessing, target)
	case "CANCELLED":
		target = domain.StatusCancelled
		moved, err = h.Repo.UpdateStatusIf(ctx, ev.OrderID, domain.StatusProcessing, target)
		if err == nil && !moved {
			moved, err = h.Repo.UpdateStatusIf(ctx, ev.OrderID, domain.StatusPending, target)
		}
	default:
		// unknown status: ignore, the stream may carry events we don't own
		return nil
	}
	if err != nil {
		return err
	}

	if moved && h.Cache != nil {
		_ = h.Cache.SetStatus(ctx, ev.OrderID, string(target))
	}
	return nil
}
