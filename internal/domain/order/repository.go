package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("order not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const orderColumns = `id, buyer_id, seller_id, status, total, sub_total, wallet_deduction_processed, created_at, updated_at`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListEligible returns completed orders whose wallet deduction has not run
// yet, in stable creation order.
func (r *Repository) ListEligible(ctx context.Context) ([]Order, error) {
	orders := []Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = $1 AND wallet_deduction_processed = false
		ORDER BY created_at ASC, id ASC
	`, string(StatusCompleted))
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *Repository) loadItems(ctx context.Context, o *Order) error {
	o.Items = []Item{}
	return r.db.SelectContext(ctx, &o.Items, `
		SELECT id, order_id, product_id, price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`, o.ID)
}

// LockDeductionStateTx locks the order row and returns the current
// wallet_deduction_processed flag, so that check and set happen inside one
// transaction.
func (r *Repository) LockDeductionStateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (bool, error) {
	var processed bool
	err := tx.GetContext(ctx, &processed, `
		SELECT wallet_deduction_processed FROM orders WHERE id = $1 FOR UPDATE
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	return processed, err
}

// MarkDeductionProcessedTx flips the processed flag within an external
// transaction. Committed together with the balance mutation and ledger
// insert, never on its own.
func (r *Repository) MarkDeductionProcessedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE orders SET wallet_deduction_processed = true, updated_at = now() WHERE id = $1
	`, id)
	return err
}
