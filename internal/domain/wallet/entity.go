package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "debit"
	TransactionTypeCredit TransactionType = "credit"
)

type TransactionStatus string

const TransactionStatusCompleted TransactionStatus = "completed"

type Wallet struct {
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction is one immutable ledger entry. PreviousBalance and NewBalance
// record the wallet balance around this single change, read and written
// under the same row lock.
type Transaction struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	UserID          uuid.UUID         `db:"user_id" json:"user_id"`
	Amount          decimal.Decimal   `db:"amount" json:"amount"`
	Type            TransactionType   `db:"type" json:"type"`
	ReferenceType   *string           `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID     *uuid.UUID        `db:"reference_id" json:"reference_id,omitempty"`
	PreviousBalance decimal.Decimal   `db:"previous_balance" json:"previous_balance"`
	NewBalance      decimal.Decimal   `db:"new_balance" json:"new_balance"`
	Status          TransactionStatus `db:"status" json:"status"`
	Description     *string           `db:"description" json:"description,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
}
