package settlement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campusconnect/campus-api/internal/domain/order"
	"github.com/campusconnect/campus-api/internal/domain/trade"
)

type ReferenceType string

const (
	ReferenceTypeOrder ReferenceType = "order"
	ReferenceTypeTrade ReferenceType = "trade"
)

// SourceEvent is the normalized input to the deduction engine: who owes,
// how much, and which record the ledger entry will reference.
type SourceEvent struct {
	SellerID      uuid.UUID
	Amount        decimal.Decimal
	ReferenceType ReferenceType
	ReferenceID   uuid.UUID
}

// Source is a completed order or trade awaiting wallet settlement. The two
// variants dispatch here, so the engine never switches on concrete types.
type Source interface {
	// Normalize computes the deduction owed. Pure; no storage access.
	Normalize() (SourceEvent, error)
	// Processed reports the wallet_deduction_processed flag as loaded.
	Processed() bool
}

// OrderEvent adapts a loaded order into a settlement source.
type OrderEvent struct {
	Order *order.Order
}

func (e OrderEvent) Processed() bool { return e.Order.WalletDeductionProcessed }

func (e OrderEvent) Normalize() (SourceEvent, error) {
	if e.Order.Status != order.StatusCompleted {
		return SourceEvent{}, ErrInvalidState
	}
	amount := orderAmount(e.Order)
	if amount.IsNegative() {
		return SourceEvent{}, ErrInvalidAmount
	}
	return SourceEvent{
		SellerID:      e.Order.SellerID,
		Amount:        amount,
		ReferenceType: ReferenceTypeOrder,
		ReferenceID:   e.Order.ID,
	}, nil
}

// orderAmount resolves the owed amount: explicit total, then sub_total,
// then the line item sum. First non-null wins.
func orderAmount(o *order.Order) decimal.Decimal {
	if o.Total.Valid {
		return o.Total.Decimal
	}
	if o.SubTotal.Valid {
		return o.SubTotal.Decimal
	}
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// TradeEvent adapts a loaded trade into a settlement source.
type TradeEvent struct {
	Trade *trade.Trade
}

func (e TradeEvent) Processed() bool { return e.Trade.WalletDeductionProcessed }

func (e TradeEvent) Normalize() (SourceEvent, error) {
	if e.Trade.Status != trade.StatusCompleted {
		return SourceEvent{}, ErrInvalidState
	}
	amount := tradeAmount(e.Trade)
	if amount.IsNegative() {
		return SourceEvent{}, ErrInvalidAmount
	}
	return SourceEvent{
		SellerID:      e.Trade.SellerID,
		Amount:        amount,
		ReferenceType: ReferenceTypeTrade,
		ReferenceID:   e.Trade.ID,
	}, nil
}

// tradeAmount sums the offered items at their estimated value, the seller
// product's own price and any additional cash component.
func tradeAmount(t *trade.Trade) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range t.OfferedItems {
		sum = sum.Add(item.EstimatedValue.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum.Add(t.SellerProductPrice).Add(t.AdditionalCash)
}
