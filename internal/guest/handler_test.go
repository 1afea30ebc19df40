package guest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/menyraclub/menyra/internal/call"
	"github.com/menyraclub/menyra/internal/menu"
	"github.com/menyraclub/menyra/internal/order"
	"github.com/menyraclub/menyra/internal/tenant"
	"github.com/menyraclub/menyra/pkg"
)

type testEnv struct {
	rests  *mockRestaurantRepo
	items  *mockMenuItemRepo
	orders *mockOrderRepo
	calls  *mockCallRepo
	kv     *mockKV
	carts  *CartStore
	pub    *mockPublisher
	router http.Handler
}

func newTestEnv() *testEnv {
	env := &testEnv{
		rests:  newMockRestaurantRepo(),
		items:  newMockMenuItemRepo(),
		orders: newMockOrderRepo(),
		calls:  newMockCallRepo(),
		kv:     newMockKV(),
		pub:    &mockPublisher{},
	}
	env.carts = NewCartStore(env.kv)

	h := NewHandler(HandlerDeps{
		Restaurants: env.rests,
		Items:       env.items,
		Offers:      newMockOfferRepo(),
		Comments:    &mockCommentRepo{},
		Orders:      env.orders,
		Calls:       env.calls,
		Carts:       env.carts,
		Likes:       NewLikeStore(env.kv),
		OrderFeed:   order.NewFeed(nil),
		CallFeed:    call.NewFeed(nil),
		Publisher:   env.pub,
	}, nil, nil)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	env.router = r
	return env
}

func (env *testEnv) seedRestaurant(t *testing.T, id string, active bool, until string) *tenant.Restaurant {
	t.Helper()
	rest := &tenant.Restaurant{
		ID:                id,
		Name:              "Testaurant",
		Active:            active,
		SubscriptionUntil: until,
		OffersEnabled:     true,
	}
	if err := env.rests.Create(context.Background(), rest); err != nil {
		t.Fatalf("cannot seed restaurant: %v", err)
	}
	return rest
}

func validUntil() string {
	return time.Now().AddDate(1, 0, 0).Format("2006-01-02")
}

func expiredUntil() string {
	return time.Now().AddDate(0, 0, -1).Format("2006-01-02")
}

func TestGuestAccessGate(t *testing.T) {
	tests := []struct {
		name       string
		active     bool
		until      string
		wantStatus int
	}{
		{name: "operational restaurant", active: true, until: validUntil(), wantStatus: http.StatusOK},
		{name: "deactivated restaurant", active: false, until: validUntil(), wantStatus: http.StatusForbidden},
		{name: "expired subscription", active: true, until: expiredUntil(), wantStatus: http.StatusForbidden},
		{name: "subscription ends today still works", active: true, until: tenant.TodayISO(), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.seedRestaurant(t, "test-restaurant", tt.active, tt.until)

			req := httptest.NewRequest(http.MethodGet, "/guest/menu?r=test-restaurant&t=T1", nil)
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGuestMenuUnknownRestaurant(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/guest/menu?r=nope&t=T1", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGuestDefaultsToDemoSession(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant(t, DefaultRestaurantID, true, validUntil())

	req := httptest.NewRequest(http.MethodGet, "/guest/menu", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestSubmitOrder(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant(t, "test-restaurant", true, validUntil())

	item := menu.NewMenuItem("test-restaurant")
	item.Name = "Pizza Margherita"
	item.Category = "Pizza"
	item.Price = 8.9
	if err := env.items.Create(context.Background(), item); err != nil {
		t.Fatalf("cannot seed item: %v", err)
	}

	addBody := `{"id":"` + item.ID.String() + `","qty":2}`
	req := httptest.NewRequest(http.MethodPost, "/guest/cart/items?r=test-restaurant&t=T1", strings.NewReader(addBody))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("add to cart: status = %d, body %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/guest/orders?r=test-restaurant&t=T1", strings.NewReader(`{"note":"no basil"}`))
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d, body %s", rec.Code, rec.Body.String())
	}

	orders, _ := env.orders.ListByRestaurant(context.Background(), "test-restaurant")
	if len(orders) != 1 {
		t.Fatalf("stored %d orders, want 1", len(orders))
	}
	o := orders[0]
	if o.Total != 17.8 {
		t.Errorf("Total = %v, want 17.8", o.Total)
	}
	if o.Status != order.StatusNew || o.Paid {
		t.Errorf("order state = %q paid=%v, want new unpaid", o.Status, o.Paid)
	}
	if o.Note != "no basil" {
		t.Errorf("Note = %q, want %q", o.Note, "no basil")
	}
	if o.Source != order.SourceQR {
		t.Errorf("Source = %q, want %q", o.Source, order.SourceQR)
	}
	if len(o.Items) != 1 || o.Items[0].Name != "Pizza Margherita" {
		t.Errorf("items snapshot = %+v", o.Items)
	}

	cart, err := env.carts.Load(context.Background(), "test-restaurant", "T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cart.IsEmpty() {
		t.Error("cart not cleared after submission")
	}

	msgs := env.pub.messages()
	if len(msgs) != 1 || msgs[0].topic != pkg.OrderEventsTopic {
		t.Fatalf("published = %+v, want one order event", msgs)
	}
	var evt pkg.OrderEvent
	if err := json.Unmarshal(msgs[0].msg, &evt); err != nil {
		t.Fatalf("cannot decode event: %v", err)
	}
	if evt.EventType != pkg.EventOrderCreated || evt.Table != "T1" {
		t.Errorf("event = %+v", evt)
	}
}

func TestSubmitOrderEmptyCartRejected(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant(t, "test-restaurant", true, validUntil())

	req := httptest.NewRequest(http.MethodPost, "/guest/orders?r=test-restaurant&t=T1", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(env.pub.messages()) != 0 {
		t.Error("empty cart submission must not publish an event")
	}
}

func TestSubmitOrderGateBlocksDeactivated(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant(t, "test-restaurant", false, validUntil())

	req := httptest.NewRequest(http.MethodPost, "/guest/orders?r=test-restaurant&t=T1", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestChangeCartItemUsesCatalogSnapshot(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant(t, "test-restaurant", true, validUntil())

	item := menu.NewMenuItem("test-restaurant")
	item.Name = "Cola"
	item.Category = "Drinks"
	item.Price = 2.5
	if err := env.items.Create(context.Background(), item); err != nil {
		t.Fatalf("cannot seed item: %v", err)
	}

	// The client claims a different name and price; the catalog wins.
	body := `{"id":"` + item.ID.String() + `","name":"Free Cola","price":0,"qty":1}`
	req := httptest.NewRequest(http.MethodPost, "/guest/cart/items?r=test-restaurant&t=T1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	cart, err := env.carts.Load(context.Background(), "test-restaurant", "T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(cart.Lines))
	}
	if cart.Lines[0].Name != "Cola" || cart.Lines[0].Price != 2.5 {
		t.Errorf("line = %+v, want catalog name and price", cart.Lines[0])
	}
}

func TestChangeCartItemOfferLine(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant(t, "test-restaurant", true, validUntil())

	// Offer lines carry their own snapshot since they refer to no menu item.
	body := `{"id":"offer:550e8400-e29b-41d4-a716-446655440000","name":"House Special","price":12,"qty":1}`
	req := httptest.NewRequest(http.MethodPost, "/guest/cart/items?r=test-restaurant&t=T1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	cart, err := env.carts.Load(context.Background(), "test-restaurant", "T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Total() != 12 {
		t.Errorf("Total = %v, want 12", cart.Total())
	}
}

func TestCallWaiterIdempotent(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant(t, "test-restaurant", true, validUntil())

	req := httptest.NewRequest(http.MethodPost, "/guest/calls?r=test-restaurant&t=T1", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first call: status = %d, body %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/guest/calls?r=test-restaurant&t=T1", nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("second call: status = %d, body %s", rec.Code, rec.Body.String())
	}

	calls, _ := env.calls.ListOpenByRestaurant(context.Background(), "test-restaurant")
	if len(calls) != 1 {
		t.Errorf("open calls = %d, want 1", len(calls))
	}

	msgs := env.pub.messages()
	if len(msgs) != 1 || msgs[0].topic != pkg.CallEventsTopic {
		t.Errorf("published %d call events, want 1", len(msgs))
	}
}

func TestToggleLikeAdjustsCounter(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant(t, "test-restaurant", true, validUntil())

	item := menu.NewMenuItem("test-restaurant")
	item.Name = "Pizza"
	item.Category = "Pizza"
	if err := env.items.Create(context.Background(), item); err != nil {
		t.Fatalf("cannot seed item: %v", err)
	}

	url := "/guest/menu-items/" + item.ID.String() + "/like?r=test-restaurant&t=T1"

	req := httptest.NewRequest(http.MethodPost, url, nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, _ := env.items.Get(context.Background(), item.ID)
	if stored.LikeCount != 1 {
		t.Errorf("LikeCount after like = %d, want 1", stored.LikeCount)
	}

	req = httptest.NewRequest(http.MethodPost, url, nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, _ = env.items.Get(context.Background(), item.ID)
	if stored.LikeCount != 0 {
		t.Errorf("LikeCount after unlike = %d, want 0", stored.LikeCount)
	}
}

func TestAddCommentAdjustsCounters(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant(t, "test-restaurant", true, validUntil())

	item := menu.NewMenuItem("test-restaurant")
	item.Name = "Pizza"
	item.Category = "Pizza"
	if err := env.items.Create(context.Background(), item); err != nil {
		t.Fatalf("cannot seed item: %v", err)
	}

	url := "/guest/menu-items/" + item.ID.String() + "/comments?r=test-restaurant&t=T1"

	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(`{"text":"excellent","rating":5}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, _ := env.items.Get(context.Background(), item.ID)
	if stored.CommentCount != 1 || stored.RatingCount != 1 || stored.RatingSum != 5 {
		t.Errorf("counters = comments:%d ratings:%d sum:%d, want 1/1/5",
			stored.CommentCount, stored.RatingCount, stored.RatingSum)
	}

	// A comment without a rating only bumps the comment count.
	req = httptest.NewRequest(http.MethodPost, url, strings.NewReader(`{"text":"ok"}`))
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, _ = env.items.Get(context.Background(), item.ID)
	if stored.CommentCount != 2 || stored.RatingCount != 1 {
		t.Errorf("counters = comments:%d ratings:%d, want 2/1", stored.CommentCount, stored.RatingCount)
	}

	req = httptest.NewRequest(http.MethodPost, url, strings.NewReader(`{"text":"","rating":3}`))
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty text: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLatestOrderForTable(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant(t, "test-restaurant", true, validUntil())

	older, err := order.NewOrder("test-restaurant", "T1", []order.Line{{ItemID: "a", Name: "Pizza", Price: 8.9, Qty: 1}}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)

	newer, err := order.NewOrder("test-restaurant", "T1", []order.Line{{ItemID: "b", Name: "Cola", Price: 2.5, Qty: 1}}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := newer.SetStatus(order.StatusInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	otherTable, err := order.NewOrder("test-restaurant", "T2", []order.Line{{ItemID: "c", Name: "Pasta", Price: 7, Qty: 1}}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	for _, o := range []*order.Order{older, newer, otherTable} {
		if err := env.orders.Create(ctx, o); err != nil {
			t.Fatalf("cannot seed order: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/guest/orders/latest?r=test-restaurant&t=T1", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if !strings.Contains(body, newer.ID.String()) {
		t.Error("response does not carry the newest order for the table")
	}
	if !strings.Contains(body, order.StagePreparing) {
		t.Error("response does not carry the guest stage")
	}

	req = httptest.NewRequest(http.MethodGet, "/guest/orders/latest?r=test-restaurant&t=T3", nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("empty table: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHiddenItemNotServed(t *testing.T) {
	env := newTestEnv()
	env.seedRestaurant(t, "test-restaurant", true, validUntil())

	item := menu.NewMenuItem("test-restaurant")
	item.Name = "Retired Dish"
	item.Category = "Pasta"
	item.Available = false
	if err := env.items.Create(context.Background(), item); err != nil {
		t.Fatalf("cannot seed item: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/guest/menu-items/"+item.ID.String()+"?r=test-restaurant&t=T1", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
