package wallet_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/campusconnect/campus-api/internal/domain/wallet"
	"github.com/campusconnect/campus-api/internal/pkg/response"
)

type fakeNotifier struct {
	mu    sync.Mutex
	wakes int
}

func (f *fakeNotifier) Wake(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wakes++
}

func (f *fakeNotifier) wakeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wakes
}

func newTestRouter(svc *wallet.Service, notifier wallet.Notifier) chi.Router {
	pass := func(next http.Handler) http.Handler { return next }
	r := chi.NewRouter()
	r.Mount("/", wallet.NewHandler(svc, notifier).Routes(pass, pass))
	return r
}

func TestTransactionsPageMeta(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(db)

	userID := createTestUser(t, db)
	createTestWallet(t, db, userID, "0")

	svc := wallet.NewService(wallet.NewRepository(db))
	for i := 0; i < 3; i++ {
		if _, err := svc.Credit(context.Background(), userID, dec(t, "10"), "seed"); err != nil {
			t.Fatalf("seed credit failed: %v", err)
		}
	}

	router := newTestRouter(svc, nil)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/%s/transactions?page=2&limit=2", userID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var body struct {
		Data []wallet.Transaction `json:"data"`
		Meta *response.Meta       `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if body.Meta == nil {
		t.Fatal("expected pagination meta")
	}
	if body.Meta.Page != 2 || body.Meta.Limit != 2 || body.Meta.Total != 3 {
		t.Fatalf("expected page 2 / limit 2 / total 3, got %+v", body.Meta)
	}
	if len(body.Data) != 1 {
		t.Fatalf("expected 1 entry on the last page, got %d", len(body.Data))
	}
}

func TestCreditWakesSettlement(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(db)

	userID := createTestUser(t, db)
	createTestWallet(t, db, userID, "0")

	notifier := &fakeNotifier{}
	router := newTestRouter(wallet.NewService(wallet.NewRepository(db)), notifier)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/%s/credit", userID),
		strings.NewReader(`{"amount": "25", "description": "top-up"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	if notifier.wakeCount() != 1 {
		t.Fatalf("expected 1 wake after credit, got %d", notifier.wakeCount())
	}

	// A rejected credit changes nothing, so the worker is not woken.
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/%s/credit", userID),
		strings.NewReader(`{"amount": "-5"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
	if notifier.wakeCount() != 1 {
		t.Fatalf("expected no wake after rejected credit, got %d", notifier.wakeCount())
	}
}
