package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	var w Wallet
	err := r.db.GetContext(ctx, &w, `
		SELECT user_id, balance, updated_at
		FROM wallets
		WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	w, err := r.Get(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	txs := []Transaction{}
	err := r.db.SelectContext(ctx, &txs, `
		SELECT id, user_id, amount, type, reference_type, reference_id,
		       previous_balance, new_balance, status, description, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return txs, err
}

func (r *Repository) CountTransactions(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT count(*) FROM wallet_transactions WHERE user_id = $1`, userID)
	return total, err
}

// LockBalanceTx reads the wallet balance under a FOR UPDATE row lock.
// Every balance mutation must read through this within the same transaction
// that writes the new balance, so concurrent mutations of one wallet
// serialize instead of losing updates.
func (r *Repository) LockBalanceTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	return balance, err
}

// SetBalanceTx writes a new balance for a wallet previously locked with
// LockBalanceTx.
func (r *Repository) SetBalanceTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, balance decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `UPDATE wallets SET balance = $1, updated_at = now() WHERE user_id = $2`, balance, userID)
	return err
}

// InsertTransactionTx inserts one ledger entry within an external transaction.
func (r *Repository) InsertTransactionTx(ctx context.Context, tx *sqlx.Tx, entry *Transaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions
			(id, user_id, amount, type, reference_type, reference_id,
			 previous_balance, new_balance, status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, entry.ID, entry.UserID, entry.Amount, string(entry.Type), entry.ReferenceType,
		entry.ReferenceID, entry.PreviousBalance, entry.NewBalance, string(entry.Status), entry.Description)
	return err
}

// Credit atomically adds funds to a wallet and records a credit ledger entry.
func (r *Repository) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	balance, err := r.LockBalanceTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	newBalance := balance.Add(amount)
	if err := r.SetBalanceTx(ctx, tx, userID, newBalance); err != nil {
		return nil, err
	}

	entry := &Transaction{
		ID:              uuid.New(),
		UserID:          userID,
		Amount:          amount,
		Type:            TransactionTypeCredit,
		PreviousBalance: balance,
		NewBalance:      newBalance,
		Status:          TransactionStatusCompleted,
	}
	if description != "" {
		entry.Description = &description
	}

	if err := r.InsertTransactionTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}
