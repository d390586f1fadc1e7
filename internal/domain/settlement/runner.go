package settlement

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/campusconnect/campus-api/internal/domain/order"
	"github.com/campusconnect/campus-api/internal/domain/trade"
)

// OrderLister discovers eligible orders.
type OrderLister interface {
	ListEligible(ctx context.Context) ([]order.Order, error)
}

// TradeLister discovers eligible trades.
type TradeLister interface {
	ListEligible(ctx context.Context) ([]trade.Trade, error)
}

// Summary aggregates one batch run.
type Summary struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
}

// Runner drives every eligible completed order and trade through the
// deduction engine. Orders first, then trades, each set in discovery order.
// Item failures are counted and logged, never aborted on.
type Runner struct {
	orders OrderLister
	trades TradeLister
	engine *Engine
}

func NewRunner(orders OrderLister, trades TradeLister, engine *Engine) *Runner {
	return &Runner{orders: orders, trades: trades, engine: engine}
}

// RunBatch settles everything currently eligible. Safe to invoke
// repeatedly: settled events are skipped via their processed flag.
func (r *Runner) RunBatch(ctx context.Context) (Summary, error) {
	var summary Summary

	orders, err := r.orders.ListEligible(ctx)
	if err != nil {
		return summary, err
	}
	for i := range orders {
		res := r.engine.ProcessDeduction(ctx, OrderEvent{Order: &orders[i]})
		r.record(&summary, string(ReferenceTypeOrder), orders[i].ID.String(), res)
	}

	trades, err := r.trades.ListEligible(ctx)
	if err != nil {
		return summary, err
	}
	for i := range trades {
		res := r.engine.ProcessDeduction(ctx, TradeEvent{Trade: &trades[i]})
		r.record(&summary, string(ReferenceTypeTrade), trades[i].ID.String(), res)
	}

	log.Info().
		Int("success_count", summary.SuccessCount).
		Int("error_count", summary.ErrorCount).
		Msg("settlement batch finished")

	return summary, nil
}

func (r *Runner) record(summary *Summary, refType, refID string, res Result) {
	if res.Success {
		summary.SuccessCount++
		log.Info().
			Str("reference_type", refType).
			Str("reference_id", refID).
			Str("outcome", "settled").
			Str("message", res.Message).
			Msg("settlement item processed")
		return
	}

	summary.ErrorCount++
	event := log.Warn()
	if !Terminal(res.Err) {
		event = log.Error()
	}
	event.
		Str("reference_type", refType).
		Str("reference_id", refID).
		Str("outcome", "failed").
		Str("message", res.Message).
		Msg("settlement item processed")
}
