package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrCartEmpty       = errors.New("cart is empty")
	ErrPersistence     = errors.New("order persistence failed")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrAmountMismatch  = errors.New("payment amount does not match order total")
	// ErrAlreadyConfirmed means the order already left PENDING; the callback
	// was delivered more than once and must not be re-applied.
	ErrAlreadyConfirmed = errors.New("order already confirmed")
)

type ProductInvalidError struct {
	ProductID string
}

func (e *ProductInvalidError) Error() string {
	return fmt.Sprintf("product %s cannot be resolved", e.ProductID)
}

// InvalidQuantityError rejects cart lines whose quantity is not a positive
// integer; a zero or negative line would slip past the availability check
// and corrupt the order total.
type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %s", e.Quantity, e.ProductID)
}

type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	if e.ProductName == "" {
		return fmt.Sprintf("insufficient stock: requested %d, available %d", e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}
