package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return s.repo.GetBalance(ctx, userID)
}

func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, int, error) {
	if limit <= 0 {
		limit = 20
	}
	txs, err := s.repo.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountTransactions(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// Credit adds funds to an existing wallet (admin refill flow). Debits only
// ever go through the settlement engine.
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	entry, err := s.repo.Credit(ctx, userID, amount, description)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("user_id", userID.String()).
		Str("amount", amount.String()).
		Str("transaction_id", entry.ID.String()).
		Msg("wallet credit applied")
	return entry, nil
}
