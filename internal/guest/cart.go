package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DefaultCartTTL bounds how long an abandoned cart survives.
const DefaultCartTTL = 24 * time.Hour

// KVStore is the key-value surface carts, like flags and sessions need.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Line is one cart entry. ID refers to a menu item, or carries an offer
// prefix for slides ordered directly.
type Line struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

// Cart is a table's pending selection before submission.
type Cart struct {
	Lines []Line `json:"lines"`
}

// ChangeQuantity adjusts a line by delta, inserting it on first add and
// removing it when the quantity drops to zero or below. Name and price only
// matter for inserts; existing lines keep their snapshot.
func (c *Cart) ChangeQuantity(id, name string, price float64, delta int) {
	for i := range c.Lines {
		if c.Lines[i].ID != id {
			continue
		}
		c.Lines[i].Qty += delta
		if c.Lines[i].Qty <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		}
		return
	}
	if delta > 0 {
		c.Lines = append(c.Lines, Line{ID: id, Name: name, Price: price, Qty: delta})
	}
}

// Quantity returns the current count for a line, 0 when absent.
func (c *Cart) Quantity(id string) int {
	for _, line := range c.Lines {
		if line.ID == id {
			return line.Qty
		}
	}
	return 0
}

// Total sums price times quantity over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, line := range c.Lines {
		total += line.Price * float64(line.Qty)
	}
	return total
}

// Count sums the quantities, for the cart badge.
func (c *Cart) Count() int {
	var n int
	for _, line := range c.Lines {
		n += line.Qty
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// CartStore persists carts per restaurant and table.
type CartStore struct {
	kv  KVStore
	ttl time.Duration
}

func NewCartStore(kv KVStore) *CartStore {
	return &CartStore{kv: kv, ttl: DefaultCartTTL}
}

func cartKey(restaurantID, tableID string) string {
	return fmt.Sprintf("menyra:cart:%s:%s", restaurantID, tableID)
}

// rawLine tolerates snapshots written by older clients: numeric ids, string
// prices and quantities all coerce instead of failing the whole cart.
type rawLine struct {
	ID    interface{} `json:"id"`
	Name  string      `json:"name"`
	Price interface{} `json:"price"`
	Qty   interface{} `json:"qty"`
}

// Load reads a table's cart. A missing or unreadable snapshot yields an empty
// cart; malformed lines coerce their numbers and lines without a positive
// quantity are dropped.
func (s *CartStore) Load(ctx context.Context, restaurantID, tableID string) (*Cart, error) {
	val, ok, err := s.kv.Get(ctx, cartKey(restaurantID, tableID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Cart{}, nil
	}

	var raw []rawLine
	if err := json.Unmarshal([]byte(val), &raw); err != nil {
		return &Cart{}, nil
	}

	cart := &Cart{}
	for _, r := range raw {
		qty := int(coerceNumber(r.Qty))
		if qty <= 0 {
			continue
		}
		cart.Lines = append(cart.Lines, Line{
			ID:    coerceString(r.ID),
			Name:  r.Name,
			Price: coerceNumber(r.Price),
			Qty:   qty,
		})
	}
	return cart, nil
}

// Save writes the cart back, dropping it entirely when empty.
func (s *CartStore) Save(ctx context.Context, restaurantID, tableID string, cart *Cart) error {
	if cart.IsEmpty() {
		return s.kv.Delete(ctx, cartKey(restaurantID, tableID))
	}

	payload, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("cannot marshal cart: %w", err)
	}
	return s.kv.Set(ctx, cartKey(restaurantID, tableID), string(payload), s.ttl)
}

// Clear drops a table's cart.
func (s *CartStore) Clear(ctx context.Context, restaurantID, tableID string) error {
	return s.kv.Delete(ctx, cartKey(restaurantID, tableID))
}

func coerceNumber(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}
