package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Trade is a completed product swap. The seller hands over their product and
// receives the buyer's offered items plus an optional cash component; the
// wallet debit owed by the seller covers all three.
type Trade struct {
	ID                       uuid.UUID       `db:"id" json:"id"`
	BuyerID                  uuid.UUID       `db:"buyer_id" json:"buyer_id"`
	SellerID                 uuid.UUID       `db:"seller_id" json:"seller_id"`
	Status                   Status          `db:"status" json:"status"`
	SellerProductPrice       decimal.Decimal `db:"seller_product_price" json:"seller_product_price"`
	AdditionalCash           decimal.Decimal `db:"additional_cash" json:"additional_cash"`
	WalletDeductionProcessed bool            `db:"wallet_deduction_processed" json:"wallet_deduction_processed"`
	CreatedAt                time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time       `db:"updated_at" json:"updated_at"`

	OfferedItems []OfferedItem `db:"-" json:"offered_items,omitempty"`
}

type OfferedItem struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	TradeID        uuid.UUID       `db:"trade_id" json:"trade_id"`
	Name           string          `db:"name" json:"name"`
	EstimatedValue decimal.Decimal `db:"estimated_value" json:"estimated_value"`
	Quantity       int             `db:"quantity" json:"quantity"`
}
