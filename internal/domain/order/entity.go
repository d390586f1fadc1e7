package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Order struct {
	ID                       uuid.UUID           `db:"id" json:"id"`
	BuyerID                  uuid.UUID           `db:"buyer_id" json:"buyer_id"`
	SellerID                 uuid.UUID           `db:"seller_id" json:"seller_id"`
	Status                   Status              `db:"status" json:"status"`
	Total                    decimal.NullDecimal `db:"total" json:"total"`
	SubTotal                 decimal.NullDecimal `db:"sub_total" json:"sub_total"`
	WalletDeductionProcessed bool                `db:"wallet_deduction_processed" json:"wallet_deduction_processed"`
	CreatedAt                time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time           `db:"updated_at" json:"updated_at"`

	Items []Item `db:"-" json:"items,omitempty"`
}

type Item struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	OrderID   uuid.UUID       `db:"order_id" json:"order_id"`
	ProductID uuid.UUID       `db:"product_id" json:"product_id"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Quantity  int             `db:"quantity" json:"quantity"`
}
