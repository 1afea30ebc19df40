package call

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Call statuses. A table has at most one open call; resolving makes room for
// the next one.
const (
	StatusOpen = "open"
	StatusDone = "done"
)

var (
	ErrTableRequired   = errors.New("table is required")
	ErrAlreadyResolved = errors.New("call is already resolved")
	// ErrDuplicateOpen is returned by stores that enforce the single open
	// call per table constraint.
	ErrDuplicateOpen = errors.New("table already has an open call")
)

// Call is a guest's request for a waiter at a table.
type Call struct {
	ID           uuid.UUID  `json:"id" bson:"_id"`
	RestaurantID string     `json:"restaurant_id" bson:"restaurant_id"`
	TableID      string     `json:"table_id" bson:"table_id"`
	Status       string     `json:"status" bson:"status"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}

func NewCall(restaurantID, tableID string) (*Call, error) {
	if tableID == "" {
		return nil, ErrTableRequired
	}
	return &Call{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		TableID:      tableID,
		Status:       StatusOpen,
		CreatedAt:    time.Now(),
	}, nil
}

func (c *Call) GetID() uuid.UUID {
	return c.ID
}

func (c *Call) ResourceType() string {
	return "call"
}

// Resolve closes the call.
func (c *Call) Resolve() error {
	if c.Status == StatusDone {
		return ErrAlreadyResolved
	}
	now := time.Now()
	c.Status = StatusDone
	c.ResolvedAt = &now
	return nil
}

type CallRepo interface {
	// Create persists a call. Stores enforcing the open call uniqueness
	// constraint return ErrDuplicateOpen on a second concurrent open.
	Create(ctx context.Context, call *Call) error
	Get(ctx context.Context, id uuid.UUID) (*Call, error)
	// FindOpen returns the table's open call, or nil.
	FindOpen(ctx context.Context, restaurantID, tableID string) (*Call, error)
	// ListOpenByRestaurant returns open calls oldest first.
	ListOpenByRestaurant(ctx context.Context, restaurantID string) ([]*Call, error)
	Save(ctx context.Context, call *Call) error
}

// Open requests a waiter for a table. Pressing the button repeatedly while a
// call is pending returns the pending call instead of stacking new ones; the
// second return value reports whether a call was actually created.
func Open(ctx context.Context, repo CallRepo, restaurantID, tableID string) (*Call, bool, error) {
	existing, err := repo.FindOpen(ctx, restaurantID, tableID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	c, err := NewCall(restaurantID, tableID)
	if err != nil {
		return nil, false, err
	}

	err = repo.Create(ctx, c)
	if errors.Is(err, ErrDuplicateOpen) {
		// Lost the race to a concurrent press; surface the winner.
		existing, ferr := repo.FindOpen(ctx, restaurantID, tableID)
		if ferr != nil {
			return nil, false, ferr
		}
		if existing != nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}

	return c, true, nil
}
