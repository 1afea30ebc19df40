package order

import (
	"context"

	"github.com/google/uuid"
)

type OrderRepo interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	// ListByRestaurant returns a restaurant's orders newest first.
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*Order, error)
	// LatestForTable returns the newest order for a table, or nil.
	LatestForTable(ctx context.Context, restaurantID, table string) (*Order, error)
	Save(ctx context.Context, order *Order) error
}
