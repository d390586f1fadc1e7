package settlement

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/campusconnect/campus-api/internal/domain/wallet"
)

// Result is the outcome of settling one source event. Failures are values,
// never panics; one bad event must not take a batch down with it.
type Result struct {
	Success     bool                `json:"success"`
	Transaction *wallet.Transaction `json:"transaction,omitempty"`
	Message     string              `json:"message,omitempty"`
	Err         error               `json:"-"`
}

// DeductionStore applies one normalized deduction as a single atomic unit:
// balance read under row lock, balance write, ledger insert and processed
// flag, committed together or not at all. Returns (nil, nil) when the event
// turned out to be already processed under the lock.
type DeductionStore interface {
	Settle(ctx context.Context, ev SourceEvent) (*wallet.Transaction, error)
}

// Engine drives the wallet deduction for a single source event. Stateless
// apart from its store reference; construct once and share.
type Engine struct {
	store DeductionStore
}

func NewEngine(store DeductionStore) *Engine {
	return &Engine{store: store}
}

// ProcessDeduction settles one completed order or trade. Safe to call
// repeatedly: an already-processed event is a success with no new ledger
// entry.
func (e *Engine) ProcessDeduction(ctx context.Context, src Source) Result {
	if src.Processed() {
		return Result{Success: true, Message: "already processed"}
	}

	ev, err := src.Normalize()
	if err != nil {
		return failure(err)
	}

	entry, err := e.store.Settle(ctx, ev)
	if err != nil {
		return failure(err)
	}
	if entry == nil {
		// Another run committed this event between our load and the
		// row lock.
		return Result{Success: true, Message: "already processed"}
	}

	log.Info().
		Str("reference_type", string(ev.ReferenceType)).
		Str("reference_id", ev.ReferenceID.String()).
		Str("seller_id", ev.SellerID.String()).
		Str("amount", ev.Amount.String()).
		Str("new_balance", entry.NewBalance.String()).
		Msg("wallet deduction settled")

	return Result{Success: true, Transaction: entry}
}

func failure(err error) Result {
	msg := err.Error()
	if !Terminal(err) {
		msg = fmt.Sprintf("settlement not committed, will retry: %v", err)
	}
	return Result{Success: false, Message: msg, Err: err}
}
