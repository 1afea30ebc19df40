package tenant

import "context"

type RestaurantRepo interface {
	Create(ctx context.Context, rest *Restaurant) error
	Get(ctx context.Context, id string) (*Restaurant, error)
	List(ctx context.Context) ([]*Restaurant, error)
	FindByOwnerCode(ctx context.Context, code string) (*Restaurant, error)
	FindByWaiterCode(ctx context.Context, code string) (*Restaurant, error)
	Save(ctx context.Context, rest *Restaurant) error
}
