package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

// MySQLStockRepo serializes stock adjustments per product row: serializable
// transaction, SELECT ... FOR UPDATE before the read, then write, then
// commit. Reading without the lock admits a lost-update race where two
// concurrent decrements both see the same stale quantity.
type MySQLStockRepo struct{ db *sql.DB }

func NewMySQLStockRepo(db *sql.DB) *MySQLStockRepo { return &MySQLStockRepo{db: db} }

func (r *MySQLStockRepo) Current(ctx context.Context, productID string) (int, error) {
	var qty int
	err := r.db.QueryRowContext(ctx,
		`SELECT stock_quantity FROM products WHERE id = ?`, productID).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, usecase.ErrProductNotFound
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}

func (r *MySQLStockRepo) AdjustWithLock(ctx context.Context, productID string, delta int) (int, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	// released on every exit path; no-op after a successful commit
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT stock_quantity FROM products WHERE id = ? FOR UPDATE`, productID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, usecase.ErrProductNotFound
	}
	if err != nil {
		return 0, err
	}

	newQty := current + delta
	if newQty < 0 {
		return 0, &usecase.InsufficientStockError{Requested: -delta, Available: current}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE products SET stock_quantity = ? WHERE id = ?`, newQty, productID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return newQty, nil
}

func (r *MySQLStockRepo) CategoryIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM categories`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ usecase.StockRepo = (*MySQLStockRepo)(nil)
