package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/zulandar/shopclerk/internal/order"
)

// stubStore implements order.Store over an in-memory slice.
type stubStore struct {
	mu      sync.Mutex
	orders  []order.Order
	loadErr error
}

func (s *stubStore) Append(o order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.Timestamp = "2026-08-29 12:00:00"
	s.orders = append(s.orders, o)
	return o, nil
}

func (s *stubStore) LoadAll() ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]order.Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

func doGet(t *testing.T, store order.Store, path string) *httptest.ResponseRecorder {
	t.Helper()
	router := newEngine(store)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doGet(t, &stubStore{}, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestOrderList_NewestFirst(t *testing.T) {
	store := &stubStore{orders: []order.Order{
		{ProductID: 1, ProductName: "Python Course", Timestamp: "2026-08-28 10:00:00"},
		{ProductID: 2, ProductName: "Marketing E-Book", Timestamp: "2026-08-29 10:00:00"},
	}}

	w := doGet(t, store, "/api/orders")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Count  int           `json:"count"`
		Orders []order.Order `json:"orders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Count != 2 {
		t.Errorf("count = %d, want 2", body.Count)
	}
	if len(body.Orders) != 2 || body.Orders[0].ProductName != "Marketing E-Book" {
		t.Errorf("expected newest first, got %+v", body.Orders)
	}
}

func TestOrderList_StoreError(t *testing.T) {
	store := &stubStore{loadErr: fmt.Errorf("disk gone")}
	w := doGet(t, store, "/api/orders")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestOrderSummary_GroupsByProduct(t *testing.T) {
	store := &stubStore{orders: []order.Order{
		{ProductID: 1, ProductName: "Python Course", Timestamp: "2026-08-28 10:00:00"},
		{ProductID: 1, ProductName: "Python Course", Timestamp: "2026-08-29 10:00:00"},
		{ProductID: 2, ProductName: "Marketing E-Book", Timestamp: "2026-08-29 11:00:00"},
	}}

	w := doGet(t, store, "/api/orders/summary")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Total    int              `json:"total"`
		Products []ProductSummary `json:"products"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Total != 3 {
		t.Errorf("total = %d, want 3", body.Total)
	}
	if len(body.Products) != 2 {
		t.Fatalf("expected 2 product groups, got %d", len(body.Products))
	}
	// Busiest first.
	if body.Products[0].ProductName != "Python Course" || body.Products[0].Count != 2 {
		t.Errorf("unexpected first group %+v", body.Products[0])
	}
	if body.Products[0].LastOrderAt != "2026-08-29 10:00:00" {
		t.Errorf("last order at = %q", body.Products[0].LastOrderAt)
	}
}

func TestSummarizeOrders_TieBreaksOnName(t *testing.T) {
	got := summarizeOrders([]order.Order{
		{ProductID: 2, ProductName: "Zeta"},
		{ProductID: 1, ProductName: "Alpha"},
	})
	if len(got) != 2 || got[0].ProductName != "Alpha" {
		t.Errorf("expected name tiebreak, got %+v", got)
	}
}

func TestSSE_SendsConnectedEvent(t *testing.T) {
	router := newEngine(&stubStore{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)

	// Cancel up front so the handler returns after the greeting.
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	router.ServeHTTP(w, req.WithContext(ctx))

	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("content type = %q", got)
	}
	if !strings.Contains(w.Body.String(), "event: connected") {
		t.Errorf("missing connected event:\n%s", w.Body.String())
	}
}

func TestSummarizeOrders_Empty(t *testing.T) {
	if got := summarizeOrders(nil); len(got) != 0 {
		t.Errorf("expected empty summary, got %+v", got)
	}
}
