package clerk

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func setupRouter(t *testing.T) (*Router, *MockAdapter, *memStore) {
	t.Helper()
	adapter := NewMockAdapter()
	adapter.Connect(context.Background())

	store := &memStore{}
	machine, err := NewMachine(MachineOpts{Catalog: testCatalog(t), Orders: store})
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}

	var out bytes.Buffer
	router, err := NewRouter(RouterOpts{
		Sessions:      NewSessionStore(),
		Machine:       machine,
		Adapter:       adapter,
		ProductsLabel: "🛒 Products",
		ContactLabel:  "📞 Contact us",
		ContactPhone:  "09123456789",
		ContactEmail:  "info@shop.example",
		BotUserID:     "bot-1",
		Out:           &out,
	})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return router, adapter, store
}

func send(router *Router, userID, text string) {
	router.Handle(context.Background(), InboundMessage{
		ChannelID: "C1",
		UserID:    userID,
		UserName:  userID,
		Text:      text,
	})
}

// --- Constructor validation ---

func TestNewRouter_MissingDeps(t *testing.T) {
	store := &memStore{}
	machine, _ := NewMachine(MachineOpts{Catalog: testCatalog(t), Orders: store})
	adapter := NewMockAdapter()

	cases := []RouterOpts{
		{Machine: machine, Adapter: adapter, ProductsLabel: "a", ContactLabel: "b"},
		{Sessions: NewSessionStore(), Adapter: adapter, ProductsLabel: "a", ContactLabel: "b"},
		{Sessions: NewSessionStore(), Machine: machine, ProductsLabel: "a", ContactLabel: "b"},
		{Sessions: NewSessionStore(), Machine: machine, Adapter: adapter},
	}
	for i, opts := range cases {
		if _, err := NewRouter(opts); err == nil {
			t.Errorf("case %d: expected constructor error", i)
		}
	}
}

// --- Self-message filtering ---

func TestHandle_IgnoresSelfMessage(t *testing.T) {
	router, adapter, _ := setupRouter(t)

	send(router, "bot-1", "1")

	if adapter.SentCount() != 0 {
		t.Errorf("expected 0 sent messages for self-message, got %d", adapter.SentCount())
	}
}

// --- Start command ---

func TestHandle_StartSendsWelcomeAndMenu(t *testing.T) {
	router, adapter, _ := setupRouter(t)

	send(router, "u1", "/start")

	msg, ok := adapter.LastSent()
	if !ok {
		t.Fatal("expected a welcome reply")
	}
	if !strings.Contains(msg.Text, "Welcome") {
		t.Errorf("unexpected welcome text: %q", msg.Text)
	}
	if len(msg.Menu) != 2 || msg.Menu[0] != "🛒 Products" || msg.Menu[1] != "📞 Contact us" {
		t.Errorf("expected menu suggestions, got %v", msg.Menu)
	}
}

// --- Menu actions ---

func TestHandle_ProductsLabelListsCatalog(t *testing.T) {
	router, adapter, _ := setupRouter(t)

	send(router, "u1", "🛒 Products")

	msg, _ := adapter.LastSent()
	for _, want := range []string{"Python Course", "399,000", "Code: 1", "Marketing E-Book", "Code: 2"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("catalog listing missing %q", want)
		}
	}
}

func TestHandle_ContactLabelSendsCard(t *testing.T) {
	router, adapter, _ := setupRouter(t)

	send(router, "u1", "📞 Contact us")

	msg, _ := adapter.LastSent()
	if !strings.Contains(msg.Text, "09123456789") || !strings.Contains(msg.Text, "info@shop.example") {
		t.Errorf("contact card incomplete: %q", msg.Text)
	}
}

func TestHandle_MenuKeywordInterruptsFlow(t *testing.T) {
	router, adapter, store := setupRouter(t)

	send(router, "u1", "1")
	send(router, "u1", "Ali")
	// Mid-flow menu keyword discards the in-progress order.
	send(router, "u1", "🛒 Products")

	if state, _ := router.sessions.Snapshot("u1"); state != StateIdle {
		t.Errorf("menu keyword must reset to Idle, got %s", state)
	}
	if orders, _ := store.LoadAll(); len(orders) != 0 {
		t.Errorf("menu interrupt must not persist an order, got %d", len(orders))
	}
	msg, _ := adapter.LastSent()
	if !strings.Contains(msg.Text, "Our products") {
		t.Errorf("expected catalog reply after interrupt, got %q", msg.Text)
	}

	// The next numeric message starts a fresh conversation.
	send(router, "u1", "2")
	if state, _ := router.sessions.Snapshot("u1"); state != StateAwaitingName {
		t.Errorf("expected fresh selection after interrupt, got %s", state)
	}
}

// --- Idle classification ---

func TestHandle_FullConversation(t *testing.T) {
	router, adapter, store := setupRouter(t)

	send(router, "u1", "1")
	if state, _ := router.sessions.Snapshot("u1"); state != StateAwaitingName {
		t.Fatalf("expected AwaitingName, got %s", state)
	}
	msg, _ := adapter.LastSent()
	if !strings.Contains(msg.Text, "Python Course") || !strings.Contains(msg.Text, "399,000") {
		t.Errorf("selection reply missing product info: %q", msg.Text)
	}

	send(router, "u1", "Ali Rezaei")
	if state, _ := router.sessions.Snapshot("u1"); state != StateAwaitingPhone {
		t.Fatalf("expected AwaitingPhone, got %s", state)
	}

	send(router, "u1", "09123456789")
	if state, _ := router.sessions.Snapshot("u1"); state != StateIdle {
		t.Fatalf("expected Idle after completion, got %s", state)
	}

	orders, _ := store.LoadAll()
	if len(orders) != 1 {
		t.Fatalf("expected exactly one order, got %d", len(orders))
	}
	if orders[0].ProductID != 1 || orders[0].CustomerName != "Ali Rezaei" || orders[0].Phone != "09123456789" {
		t.Errorf("order fields wrong: %+v", orders[0])
	}

	msg, _ = adapter.LastSent()
	if !strings.Contains(msg.Text, "placed") {
		t.Errorf("expected confirmation, got %q", msg.Text)
	}
	if len(msg.Menu) == 0 {
		t.Error("expected menu suggestion after completed order")
	}
}

func TestHandle_UnknownCodeWhileIdle(t *testing.T) {
	router, adapter, store := setupRouter(t)

	send(router, "u1", "99")

	if state, _ := router.sessions.Snapshot("u1"); state != StateIdle {
		t.Errorf("expected Idle after unknown code, got %s", state)
	}
	if orders, _ := store.LoadAll(); len(orders) != 0 {
		t.Errorf("no order should be appended, got %d", len(orders))
	}
	msg, _ := adapter.LastSent()
	if msg.Text != msgNotFound {
		t.Errorf("expected not-found reply, got %q", msg.Text)
	}
}

func TestHandle_NonNumericWhileIdle(t *testing.T) {
	router, adapter, _ := setupRouter(t)

	send(router, "u1", "hello there")

	if state, _ := router.sessions.Snapshot("u1"); state != StateIdle {
		t.Errorf("expected Idle, got %s", state)
	}
	msg, _ := adapter.LastSent()
	if msg.Text != msgNotFound {
		t.Errorf("expected not-found reply, got %q", msg.Text)
	}
}

func TestHandle_TrimsWhitespaceBeforeClassifying(t *testing.T) {
	router, _, _ := setupRouter(t)

	send(router, "u1", "  1  ")

	if state, _ := router.sessions.Snapshot("u1"); state != StateAwaitingName {
		t.Errorf("expected trimmed numeric text to select, got %s", state)
	}
}

func TestHandle_NumericNameMidFlowIsStoredNotClassified(t *testing.T) {
	router, _, store := setupRouter(t)

	send(router, "u1", "1")
	// "2" is a valid product code, but mid-flow it is the customer's name.
	send(router, "u1", "2")
	send(router, "u1", "0912")

	orders, _ := store.LoadAll()
	if len(orders) != 1 {
		t.Fatalf("expected one order, got %d", len(orders))
	}
	if orders[0].CustomerName != "2" || orders[0].ProductID != 1 {
		t.Errorf("mid-flow numeric text misrouted: %+v", orders[0])
	}
}

func TestHandle_IndependentUsersInterleaved(t *testing.T) {
	router, _, store := setupRouter(t)

	send(router, "u1", "1")
	send(router, "u2", "2")
	send(router, "u1", "Ali")
	send(router, "u2", "Sara")
	send(router, "u1", "0912")
	send(router, "u2", "0935")

	orders, _ := store.LoadAll()
	if len(orders) != 2 {
		t.Fatalf("expected two orders, got %d", len(orders))
	}
	byName := map[string]int{}
	for _, o := range orders {
		byName[o.CustomerName] = o.ProductID
	}
	if byName["Ali"] != 1 || byName["Sara"] != 2 {
		t.Errorf("orders crossed between users: %+v", orders)
	}
}

func TestIsNumeric(t *testing.T) {
	cases := map[string]bool{
		"1":     true,
		"42":    true,
		"007":   true,
		"":      false,
		"1a":    false,
		"-1":    false,
		"1.5":   false,
		"hello": false,
		"۱۲":    false, // non-ASCII digits are rejected upstream
	}
	for text, want := range cases {
		if got := isNumeric(text); got != want {
			t.Errorf("isNumeric(%q) = %v, want %v", text, got, want)
		}
	}
}
