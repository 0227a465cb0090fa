package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/entity"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/logging"
)

// CreateOrder drives the checkout saga: cart fetch, availability check,
// transactional persist, then best-effort cart clear and event publish.
// The DB transaction brackets only the local write; no cross-service call
// happens while it is open.
type CreateOrder struct {
	cart     CartClient
	products ProductClient
	repo     OrderRepo
	pub      EventPublisher
}

func NewCreateOrder(cart CartClient, products ProductClient, repo OrderRepo, pub EventPublisher) *CreateOrder {
	return &CreateOrder{cart: cart, products: products, repo: repo, pub: pub}
}

type CreateOrderInput struct {
	UserID          string
	ShippingAddress string
}

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	l := logging.FromCtx(ctx)

	// 1. cart fetch; absent or empty aborts before any write
	cart, err := uc.cart.Get(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	// 2+3. availability check against the authoritative catalog and snapshot
	// build. This is a read, not a reservation; stock is decremented later by
	// the locked ledger path.
	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		if line.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: line.ProductID, Quantity: line.Quantity}
		}
		prod, err := uc.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("fetch product %s: %w", line.ProductID, err)
		}
		if prod == nil {
			return nil, &ProductInvalidError{ProductID: line.ProductID}
		}
		if line.Quantity > prod.StockQuantity {
			return nil, &InsufficientStockError{
				ProductName: prod.Name,
				Requested:   line.Quantity,
				Available:   prod.StockQuantity,
			}
		}
		items = append(items, domain.OrderItem{
			ProductID:   prod.ID,
			Quantity:    line.Quantity,
			Price:       prod.Price,
			ProductName: prod.Name,
		})
	}

	addr := in.ShippingAddress
	if addr == "" {
		addr = domain.DefaultShippingAddress
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		Status:          domain.StatusPending,
		ShippingAddress: addr,
		Items:           items,
		CreatedAt:       time.Now(),
	}
	order.TotalAmount = order.Total()

	// 4. single transaction for order + items; nothing partial is visible
	if err := uc.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// 5. cart clear is best-effort: a stale cart is clutter, not corruption
	if err := uc.cart.Delete(ctx, in.UserID); err != nil {
		l.Error("cart delete failed after order commit",
			"order_id", order.ID, "user_id", in.UserID, "err", err)
	}

	// 6. publish failure must never invalidate a committed order
	if err := uc.pub.PublishOrderCreated(ctx, orderCreatedMsg(order)); err != nil {
		l.Error("order.created publish failed", "order_id", order.ID, "err", err)
	}

	// 7. re-read so the caller sees exactly what was committed
	persisted, err := uc.repo.GetByID(ctx, order.ID)
	if err != nil || persisted == nil {
		l.Error("order re-read failed, returning in-memory copy", "order_id", order.ID, "err", err)
		return order, nil
	}
	return persisted, nil
}

func orderCreatedMsg(o *domain.Order) OrderCreatedMsg {
	snaps := make([]OrderItemSnap, 0, len(o.Items))
	for _, it := range o.Items {
		snaps = append(snaps, OrderItemSnap{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price.StringFixed(2),
		})
	}
	return OrderCreatedMsg{
		OrderID:         o.ID,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount.StringFixed(2),
		Items:           snaps,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
	}
}
