package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/entity"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

// Create inserts the order and its items in a single transaction. Either
// everything is visible after commit or nothing is.
func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO orders (id,user_id,status,total_amount,shipping_address,created_at,updated_at)
VALUES (?,?,?,?,?,NOW(),NOW())
`, o.ID, o.UserID, string(o.Status), o.TotalAmount, o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
INSERT INTO order_items (order_id,product_id,quantity,price,product_name)
VALUES (?,?,?,?,?)
`, o.ID, it.ProductID, it.Quantity, it.Price, it.ProductName)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id,user_id,status,total_amount,shipping_address,created_at,updated_at
FROM orders WHERE id=?`, id)

	var o domain.Order
	var status string
	if err := row.Scan(&o.ID, &o.UserID, &status, &o.TotalAmount, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Status = domain.Status(status)

	rows, err := r.db.QueryContext(ctx, `
SELECT id,order_id,product_id,quantity,price,product_name
FROM order_items WHERE order_id=? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price, &it.ProductName); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatusIf performs a guarded transition. rows == 0 means either the
// order does not exist or its status already moved; callers use that for
// idempotency decisions.
func (r *MySQLOrderRepo) UpdateStatusIf(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET status = ?, updated_at = NOW()
WHERE id = ? AND status = ?`,
		string(to), id, string(from),
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
