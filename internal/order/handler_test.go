package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/menyraclub/menyra/pkg"
)

func newTestHandler(repo *mockOrderRepo, pub *mockPublisher) http.Handler {
	h := NewHandler(repo, NewFeed(nil), pub, nil, nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func seedOrder(t *testing.T, repo *mockOrderRepo, table, status string) *Order {
	t.Helper()
	o, err := NewOrder("test-restaurant", table, testLines(), "")
	if err != nil {
		t.Fatalf("cannot build order: %v", err)
	}
	if status != StatusNew {
		if err := o.SetStatus(status); err != nil {
			t.Fatalf("cannot set status: %v", err)
		}
	}
	if err := repo.Create(context.Background(), o); err != nil {
		t.Fatalf("cannot seed order: %v", err)
	}
	return o
}

func TestListOrdersValidation(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{name: "missing restaurant", url: "/staff/orders", wantStatus: http.StatusBadRequest},
		{name: "unknown filter", url: "/staff/orders?r=test-restaurant&status=bogus", wantStatus: http.StatusBadRequest},
		{name: "valid all filter", url: "/staff/orders?r=test-restaurant&status=all", wantStatus: http.StatusOK},
		{name: "valid status filter", url: "/staff/orders?r=test-restaurant&status=new", wantStatus: http.StatusOK},
	}

	router := newTestHandler(newMockOrderRepo(), &mockPublisher{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestUpdateStatusPublishesEvent(t *testing.T) {
	repo := newMockOrderRepo()
	pub := &mockPublisher{}
	router := newTestHandler(repo, pub)

	o := seedOrder(t, repo, "T1", StatusNew)

	body := strings.NewReader(`{"status":"in_progress"}`)
	req := httptest.NewRequest(http.MethodPost, "/staff/orders/"+o.ID.String()+"/status", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	stored, _ := repo.Get(context.Background(), o.ID)
	if stored.Status != StatusInProgress {
		t.Errorf("stored status = %q, want %q", stored.Status, StatusInProgress)
	}

	msgs := pub.messages()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	if msgs[0].topic != pkg.OrderEventsTopic {
		t.Errorf("topic = %q, want %q", msgs[0].topic, pkg.OrderEventsTopic)
	}

	var evt pkg.OrderEvent
	if err := json.Unmarshal(msgs[0].msg, &evt); err != nil {
		t.Fatalf("cannot decode event: %v", err)
	}
	if evt.EventType != pkg.EventOrderStatusChanged {
		t.Errorf("EventType = %q, want %q", evt.EventType, pkg.EventOrderStatusChanged)
	}
	if evt.PreviousStatus != StatusNew || evt.Status != StatusInProgress {
		t.Errorf("transition = %q -> %q, want new -> in_progress", evt.PreviousStatus, evt.Status)
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	repo := newMockOrderRepo()
	pub := &mockPublisher{}
	router := newTestHandler(repo, pub)

	o := seedOrder(t, repo, "T1", StatusNew)

	body := strings.NewReader(`{"status":"cancelled"}`)
	req := httptest.NewRequest(http.MethodPost, "/staff/orders/"+o.ID.String()+"/status", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(pub.messages()) != 0 {
		t.Error("rejected update must not publish an event")
	}
}

func TestMarkPaidTwiceConflicts(t *testing.T) {
	repo := newMockOrderRepo()
	pub := &mockPublisher{}
	router := newTestHandler(repo, pub)

	o := seedOrder(t, repo, "T1", StatusServed)

	req := httptest.NewRequest(http.MethodPost, "/staff/orders/"+o.ID.String()+"/paid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first settle: status = %d, want %d", rec.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodPost, "/staff/orders/"+o.ID.String()+"/paid", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("second settle: status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	router := newTestHandler(newMockOrderRepo(), &mockPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/staff/orders/550e8400-e29b-41d4-a716-446655440000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
