package menu

import (
	"context"

	"github.com/google/uuid"
)

type MenuItemRepo interface {
	Create(ctx context.Context, item *MenuItem) error
	Get(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*MenuItem, error)
	Save(ctx context.Context, item *MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementCounters atomically adjusts the social counters. Zero deltas
	// are omitted from the update.
	IncrementCounters(ctx context.Context, id uuid.UUID, likes, comments, ratings, ratingSum int) error
}

type OfferRepo interface {
	Create(ctx context.Context, offer *Offer) error
	Get(ctx context.Context, id uuid.UUID) (*Offer, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*Offer, error)
	Save(ctx context.Context, offer *Offer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CommentRepo interface {
	Create(ctx context.Context, comment *Comment) error
	ListByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]*Comment, error)
}
