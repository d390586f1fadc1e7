package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusconnect/campus-api/internal/domain/order"
	"github.com/campusconnect/campus-api/internal/domain/trade"
	"github.com/campusconnect/campus-api/internal/domain/wallet"
)

// Repository is the Postgres deduction store. One Settle call is one
// database transaction; the wallet row lock serializes concurrent
// deductions against the same wallet while leaving other wallets free.
type Repository struct {
	db      *sqlx.DB
	wallets *wallet.Repository
	orders  *order.Repository
	trades  *trade.Repository
}

func NewRepository(db *sqlx.DB, wallets *wallet.Repository, orders *order.Repository, trades *trade.Repository) *Repository {
	return &Repository{db: db, wallets: wallets, orders: orders, trades: trades}
}

func (r *Repository) Settle(ctx context.Context, ev SourceEvent) (*wallet.Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("settle: begin: %w", err)
	}
	defer tx.Rollback()

	// Re-check the processed flag under the source row lock; the flag as
	// loaded by the caller may be stale.
	processed, err := r.lockSource(ctx, tx, ev)
	if err != nil {
		return nil, err
	}
	if processed {
		return nil, nil
	}

	previous, err := r.wallets.LockBalanceTx(ctx, tx, ev.SellerID)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("settle: lock wallet: %w", err)
	}

	if ev.Amount.GreaterThan(previous) {
		return nil, ErrInsufficientFunds
	}

	newBalance := previous.Sub(ev.Amount)
	if err := r.wallets.SetBalanceTx(ctx, tx, ev.SellerID, newBalance); err != nil {
		return nil, fmt.Errorf("settle: update balance: %w", err)
	}

	refType := string(ev.ReferenceType)
	refID := ev.ReferenceID
	entry := &wallet.Transaction{
		ID:              uuid.New(),
		UserID:          ev.SellerID,
		Amount:          ev.Amount,
		Type:            wallet.TransactionTypeDebit,
		ReferenceType:   &refType,
		ReferenceID:     &refID,
		PreviousBalance: previous,
		NewBalance:      newBalance,
		Status:          wallet.TransactionStatusCompleted,
	}
	if err := r.wallets.InsertTransactionTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("settle: insert ledger entry: %w", err)
	}

	if err := r.markProcessed(ctx, tx, ev); err != nil {
		return nil, fmt.Errorf("settle: mark processed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("settle: commit: %w", err)
	}
	return entry, nil
}

func (r *Repository) lockSource(ctx context.Context, tx *sqlx.Tx, ev SourceEvent) (bool, error) {
	switch ev.ReferenceType {
	case ReferenceTypeOrder:
		processed, err := r.orders.LockDeductionStateTx(ctx, tx, ev.ReferenceID)
		if errors.Is(err, order.ErrNotFound) {
			return false, ErrInvalidState
		}
		if err != nil {
			return false, fmt.Errorf("settle: lock order: %w", err)
		}
		return processed, nil
	case ReferenceTypeTrade:
		processed, err := r.trades.LockDeductionStateTx(ctx, tx, ev.ReferenceID)
		if errors.Is(err, trade.ErrNotFound) {
			return false, ErrInvalidState
		}
		if err != nil {
			return false, fmt.Errorf("settle: lock trade: %w", err)
		}
		return processed, nil
	default:
		return false, ErrInvalidState
	}
}

func (r *Repository) markProcessed(ctx context.Context, tx *sqlx.Tx, ev SourceEvent) error {
	switch ev.ReferenceType {
	case ReferenceTypeOrder:
		return r.orders.MarkDeductionProcessedTx(ctx, tx, ev.ReferenceID)
	case ReferenceTypeTrade:
		return r.trades.MarkDeductionProcessedTx(ctx, tx, ev.ReferenceID)
	default:
		return ErrInvalidState
	}
}
