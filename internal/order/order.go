package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Order statuses in the order staff move them through. Paid is terminal.
const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusServed     = "served"
	StatusPaid       = "paid"
)

// StatusAll is the staff list filter that matches every status.
const StatusAll = "all"

// SourceQR marks orders submitted from a scanned table code.
const SourceQR = "qr"

var (
	ErrEmptyOrder     = errors.New("order has no items")
	ErrUnknownStatus  = errors.New("unknown order status")
	ErrAlreadyPaid    = errors.New("order is already paid")
	ErrOrderNotFound  = errors.New("order not found")
	ErrTableRequired  = errors.New("table is required")
	ErrInvalidLineQty = errors.New("line quantity must be positive")
)

// Line is a priced snapshot of one cart line at submission time. Later menu
// edits never change what a placed order shows.
type Line struct {
	ItemID string  `json:"id" bson:"item_id"`
	Name   string  `json:"name" bson:"name"`
	Price  float64 `json:"price" bson:"price"`
	Qty    int     `json:"qty" bson:"qty"`
}

// Order is one guest submission for a table.
type Order struct {
	ID           uuid.UUID `json:"id" bson:"_id"`
	RestaurantID string    `json:"restaurant_id" bson:"restaurant_id"`
	Table        string    `json:"table" bson:"table"`
	Items        []Line    `json:"items" bson:"items"`
	Note         string    `json:"note,omitempty" bson:"note,omitempty"`
	Status       string    `json:"status" bson:"status"`
	Paid         bool      `json:"paid" bson:"paid"`
	Total        float64   `json:"total" bson:"total"`
	Source       string    `json:"source" bson:"source"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// NewOrder builds a fresh order from snapshot lines. Every new order starts
// unpaid in status new with a server-computed total.
func NewOrder(restaurantID, table string, items []Line, note string) (*Order, error) {
	if table == "" {
		return nil, ErrTableRequired
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range items {
		if line.Qty <= 0 {
			return nil, ErrInvalidLineQty
		}
	}

	now := time.Now()
	return &Order{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Table:        table,
		Items:        items,
		Note:         note,
		Status:       StatusNew,
		Paid:         false,
		Total:        SumLines(items),
		Source:       SourceQR,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

// KnownStatus reports whether s is one of the statuses the system tracks.
func KnownStatus(s string) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusServed, StatusPaid:
		return true
	}
	return false
}

// SetStatus moves the order to any known status. Transitions are not
// constrained beyond status validity; staff can move orders backwards.
// Entering paid also flips the paid flag.
func (o *Order) SetStatus(status string) error {
	if !KnownStatus(status) {
		return ErrUnknownStatus
	}
	o.Status = status
	if status == StatusPaid {
		o.Paid = true
	}
	o.UpdatedAt = time.Now()
	return nil
}

// MarkPaid settles the order.
func (o *Order) MarkPaid() error {
	if o.Paid {
		return ErrAlreadyPaid
	}
	o.Paid = true
	o.Status = StatusPaid
	o.UpdatedAt = time.Now()
	return nil
}

// SumLines computes an order total from its lines.
func SumLines(items []Line) float64 {
	var total float64
	for _, line := range items {
		total += line.Price * float64(line.Qty)
	}
	return total
}

// Guest-facing stages. The status page shows these instead of raw statuses.
const (
	StageReceived  = "received"
	StagePreparing = "preparing"
	StageServed    = "served"
	StageDone      = "done"
)

// GuestStage maps an order status to the friendly stage guests see. Unknown
// statuses read as received so a stale page never shows an empty stage.
func GuestStage(status string) string {
	switch status {
	case StatusInProgress:
		return StagePreparing
	case StatusServed:
		return StageServed
	case StatusPaid:
		return StageDone
	default:
		return StageReceived
	}
}

// MatchesFilter reports whether the order passes a staff list filter. The
// filters mirror the dashboard tabs: all, new, in_progress, served.
func (o *Order) MatchesFilter(filter string) bool {
	if filter == "" || filter == StatusAll {
		return true
	}
	return o.Status == filter
}

// DaySummary aggregates one day's orders for the owner dashboard.
type DaySummary struct {
	Date       string     `json:"date"`
	OrderCount int        `json:"order_count"`
	PaidCount  int        `json:"paid_count"`
	Revenue    float64    `json:"revenue"`
	OpenTotal  float64    `json:"open_total"`
	Orders     []DayOrder `json:"orders"`
}

// DayOrder is one row of the day listing.
type DayOrder struct {
	ID        uuid.UUID `json:"id"`
	Table     string    `json:"table"`
	Positions int       `json:"positions"`
	Total     float64   `json:"total"`
	Status    string    `json:"status"`
	Paid      bool      `json:"paid"`
}

// Summarize reduces orders to the given day's totals plus one row per order.
// Revenue only counts paid orders; unpaid ones show up as open total.
func Summarize(orders []*Order, date string) DaySummary {
	s := DaySummary{Date: date}
	for _, o := range orders {
		if o.CreatedAt.Format("2006-01-02") != date {
			continue
		}
		s.OrderCount++
		if o.Paid {
			s.PaidCount++
			s.Revenue += o.Total
		} else {
			s.OpenTotal += o.Total
		}
		positions := 0
		for _, line := range o.Items {
			positions += line.Qty
		}
		s.Orders = append(s.Orders, DayOrder{
			ID:        o.ID,
			Table:     o.Table,
			Positions: positions,
			Total:     o.Total,
			Status:    o.Status,
			Paid:      o.Paid,
		})
	}
	return s
}
