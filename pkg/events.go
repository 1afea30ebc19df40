package pkg

import "time"

const (
	// OrderEventsTopic carries order lifecycle events for live dashboards and
	// guest status views.
	OrderEventsTopic = "orders.events"
	// CallEventsTopic carries waiter call open/resolve events.
	CallEventsTopic = "calls.events"

	// EventOrderCreated identifies a freshly submitted order.
	EventOrderCreated = "order.created"
	// EventOrderStatusChanged identifies a staff-side status update.
	EventOrderStatusChanged = "order.status_changed"

	// EventCallOpened identifies a guest waiter call.
	EventCallOpened = "call.opened"
	// EventCallResolved identifies a staff-side call resolution.
	EventCallResolved = "call.resolved"
)

// OrderEvent captures the minimal information live views need to re-evaluate
// their order snapshots. Consumers re-query the store rather than trusting the
// payload as authoritative state.
type OrderEvent struct {
	EventType      string    `json:"event_type"`
	RestaurantID   string    `json:"restaurant_id"`
	OrderID        string    `json:"order_id"`
	Table          string    `json:"table"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Total          float64   `json:"total,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// CallEvent signals that a table's waiter call changed state.
type CallEvent struct {
	EventType    string    `json:"event_type"`
	RestaurantID string    `json:"restaurant_id"`
	CallID       string    `json:"call_id"`
	TableID      string    `json:"table_id"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}
