package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	domain "github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/entity"
)

// Cart shapes as served by the cart service (read/delete contract only).
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	UserID string     `json:"userId"`
	Items  []CartItem `json:"items"`
}

// CartClient talks to the cart key-value service. Get returns nil when the
// user has no cart.
type CartClient interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Delete(ctx context.Context, userID string) error
}

// Product is the authoritative catalog record. Only StockQuantity is ever
// mutated by this service, through StockRepo.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	CategoryID    string          `json:"categoryId"`
}

// ProductClient resolves catalog records. GetByID returns nil when the
// product does not exist.
type ProductClient interface {
	GetByID(ctx context.Context, id string) (*Product, error)
}

type OrderRepo interface {
	// Create persists the order and its items in one transaction.
	Create(ctx context.Context, o *domain.Order) error
	// GetByID loads the order with its items, or nil when absent.
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// UpdateStatusIf performs a guarded from->to transition and reports
	// whether a row was actually moved.
	UpdateStatusIf(ctx context.Context, id string, from, to domain.Status) (bool, error)
}

type StockRepo interface {
	// Current reads the stock quantity without taking any lock.
	Current(ctx context.Context, productID string) (int, error)
	// AdjustWithLock applies delta under a pessimistic row lock inside a
	// serializable transaction and returns the new quantity.
	AdjustWithLock(ctx context.Context, productID string, delta int) (int, error)
	// CategoryIDs enumerates all category ids (for cache invalidation).
	CategoryIDs(ctx context.Context) ([]string, error)
}

// CatalogCache invalidates the cached catalog views touched by a stock write.
type CatalogCache interface {
	InvalidateProduct(ctx context.Context, productID string, categoryIDs []string) error
}

// StatusCache is a best-effort read-through cache for order status.
type StatusCache interface {
	SetStatus(ctx context.Context, orderID string, status string) error
	GetStatus(ctx context.Context, orderID string) (string, error)
}

// EventPublisher is the relay onto the durable queue. Callers treat publish
// failures as best-effort: logged, never propagated past a committed write.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, msg OrderCreatedMsg) error
	PublishPaymentProcessed(ctx context.Context, msg PaymentProcessedMsg) error
}
