package settlement_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campusconnect/campus-api/internal/domain/order"
	"github.com/campusconnect/campus-api/internal/domain/settlement"
	"github.com/campusconnect/campus-api/internal/domain/trade"
	"github.com/campusconnect/campus-api/internal/domain/wallet"
)

// fakeStore is an in-memory deduction store with the same atomicity
// contract as the Postgres one: a failed settle mutates nothing, and
// settles against one wallet serialize.
type fakeStore struct {
	mu         sync.Mutex
	balances   map[uuid.UUID]decimal.Decimal
	processed  map[uuid.UUID]bool
	entries    []*wallet.Transaction
	settles    int
	failSettle error // when set, Settle fails before committing anything
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		balances:  make(map[uuid.UUID]decimal.Decimal),
		processed: make(map[uuid.UUID]bool),
	}
}

func (s *fakeStore) Settle(_ context.Context, ev settlement.SourceEvent) (*wallet.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settles++

	if s.processed[ev.ReferenceID] {
		return nil, nil
	}

	balance, ok := s.balances[ev.SellerID]
	if !ok {
		return nil, settlement.ErrWalletNotFound
	}
	if ev.Amount.GreaterThan(balance) {
		return nil, settlement.ErrInsufficientFunds
	}
	if s.failSettle != nil {
		return nil, s.failSettle
	}

	newBalance := balance.Sub(ev.Amount)
	s.balances[ev.SellerID] = newBalance

	refType := string(ev.ReferenceType)
	refID := ev.ReferenceID
	entry := &wallet.Transaction{
		ID:              uuid.New(),
		UserID:          ev.SellerID,
		Amount:          ev.Amount,
		Type:            wallet.TransactionTypeDebit,
		ReferenceType:   &refType,
		ReferenceID:     &refID,
		PreviousBalance: balance,
		NewBalance:      newBalance,
		Status:          wallet.TransactionStatusCompleted,
	}
	s.entries = append(s.entries, entry)
	s.processed[ev.ReferenceID] = true
	return entry, nil
}

func (s *fakeStore) balance(id uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[id]
}

func (s *fakeStore) isProcessed(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed[id]
}

func (s *fakeStore) entryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *fakeStore) settleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settles
}

type fakeOrderLister struct {
	mu     sync.Mutex
	orders []order.Order
}

func (f *fakeOrderLister) ListEligible(context.Context) ([]order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]order.Order, 0, len(f.orders))
	for _, o := range f.orders {
		if !o.WalletDeductionProcessed {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderLister) add(o order.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, o)
}

type fakeTradeLister struct {
	trades []trade.Trade
}

func (f *fakeTradeLister) ListEligible(context.Context) ([]trade.Trade, error) {
	out := make([]trade.Trade, len(f.trades))
	copy(out, f.trades)
	return out, nil
}
