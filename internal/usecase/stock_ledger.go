package usecase

import (
	"context"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/logging"
)

// StockLedger owns product stock counts. Non-zero adjustments run under the
// repo's pessimistic row lock; zero-delta calls are plain reads.
type StockLedger struct {
	repo  StockRepo
	cache CatalogCache
}

func NewStockLedger(repo StockRepo, cache CatalogCache) *StockLedger {
	return &StockLedger{repo: repo, cache: cache}
}

// Adjust applies delta (positive restock, negative consumption) and returns
// the new quantity. A successful write invalidates the product, product-list
// and every per-category list cache entry.
func (uc *StockLedger) Adjust(ctx context.Context, productID string, delta int) (int, error) {
	if delta == 0 {
		return uc.repo.Current(ctx, productID)
	}

	newQty, err := uc.repo.AdjustWithLock(ctx, productID, delta)
	if err != nil {
		return 0, err
	}

	uc.invalidate(ctx, productID)
	return newQty, nil
}

func (uc *StockLedger) invalidate(ctx context.Context, productID string) {
	if uc.cache == nil {
		return
	}
	l := logging.FromCtx(ctx)

	cats, err := uc.repo.CategoryIDs(ctx)
	if err != nil {
		l.Error("category enumeration failed, cache left stale", "product_id", productID, "err", err)
		cats = nil
	}
	if err := uc.cache.InvalidateProduct(ctx, productID, cats); err != nil {
		l.Error("catalog cache invalidation failed", "product_id", productID, "err", err)
	}
}
