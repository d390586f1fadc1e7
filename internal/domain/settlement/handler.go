package settlement

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campusconnect/campus-api/internal/domain/order"
	"github.com/campusconnect/campus-api/internal/domain/trade"
	"github.com/campusconnect/campus-api/internal/pkg/response"
	"github.com/campusconnect/campus-api/internal/pkg/validator"
)

// OrderGetter loads one order with its items.
type OrderGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// TradeGetter loads one trade with its offered items.
type TradeGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*trade.Trade, error)
}

// Handler exposes the operational settlement surface: trigger a full batch
// or settle a single event on demand.
type Handler struct {
	runner *Runner
	engine *Engine
	orders OrderGetter
	trades TradeGetter
}

func NewHandler(runner *Runner, engine *Engine, orders OrderGetter, trades TradeGetter) *Handler {
	return &Handler{runner: runner, engine: engine, orders: orders, trades: trades}
}

type settleRequest struct {
	ReferenceType string `json:"reference_type" validate:"required,reference_type"`
	ReferenceID   string `json:"reference_id" validate:"required,uuid"`
}

func (h *Handler) RunBatch(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runner.RunBatch(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, summary)
}

func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	refID := uuid.MustParse(req.ReferenceID)
	src, err := h.loadSource(r.Context(), ReferenceType(req.ReferenceType), refID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) || errors.Is(err, trade.ErrNotFound) {
			response.NotFound(w, req.ReferenceType+" not found")
			return
		}
		response.InternalError(w)
		return
	}

	res := h.engine.ProcessDeduction(r.Context(), src)
	if !res.Success {
		if Terminal(res.Err) {
			response.Conflict(w, res.Message)
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, res)
}

func (h *Handler) loadSource(ctx context.Context, refType ReferenceType, refID uuid.UUID) (Source, error) {
	switch refType {
	case ReferenceTypeTrade:
		t, err := h.trades.GetByID(ctx, refID)
		if err != nil {
			return nil, err
		}
		return TradeEvent{Trade: t}, nil
	default:
		o, err := h.orders.GetByID(ctx, refID)
		if err != nil {
			return nil, err
		}
		return OrderEvent{Order: o}, nil
	}
}

func (h *Handler) Routes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(adminMiddleware)
	r.Post("/run", h.RunBatch)
	r.Post("/settle", h.Settle)
	return r
}
