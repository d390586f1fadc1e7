package trade

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("trade not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const tradeColumns = `
	t.id, t.buyer_id, t.seller_id, t.status, t.additional_cash,
	t.wallet_deduction_processed, t.created_at, t.updated_at,
	p.price AS seller_product_price`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Trade, error) {
	var t Trade
	err := r.db.GetContext(ctx, &t, `
		SELECT `+tradeColumns+`
		FROM trades t
		JOIN products p ON p.id = t.seller_product_id
		WHERE t.id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadOfferedItems(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListEligible returns completed trades whose wallet deduction has not run
// yet, in stable creation order.
func (r *Repository) ListEligible(ctx context.Context) ([]Trade, error) {
	trades := []Trade{}
	err := r.db.SelectContext(ctx, &trades, `
		SELECT `+tradeColumns+`
		FROM trades t
		JOIN products p ON p.id = t.seller_product_id
		WHERE t.status = $1 AND t.wallet_deduction_processed = false
		ORDER BY t.created_at ASC, t.id ASC
	`, string(StatusCompleted))
	if err != nil {
		return nil, err
	}
	for i := range trades {
		if err := r.loadOfferedItems(ctx, &trades[i]); err != nil {
			return nil, err
		}
	}
	return trades, nil
}

func (r *Repository) loadOfferedItems(ctx context.Context, t *Trade) error {
	t.OfferedItems = []OfferedItem{}
	return r.db.SelectContext(ctx, &t.OfferedItems, `
		SELECT id, trade_id, name, estimated_value, quantity
		FROM trade_offered_items
		WHERE trade_id = $1
		ORDER BY id ASC
	`, t.ID)
}

// LockDeductionStateTx locks the trade row and returns the current
// wallet_deduction_processed flag.
func (r *Repository) LockDeductionStateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (bool, error) {
	var processed bool
	err := tx.GetContext(ctx, &processed, `
		SELECT wallet_deduction_processed FROM trades WHERE id = $1 FOR UPDATE
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	return processed, err
}

// MarkDeductionProcessedTx flips the processed flag within an external
// transaction.
func (r *Repository) MarkDeductionProcessedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE trades SET wallet_deduction_processed = true, updated_at = now() WHERE id = $1
	`, id)
	return err
}
