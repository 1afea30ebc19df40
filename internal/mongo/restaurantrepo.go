package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menyraclub/menyra/internal/tenant"
)

type RestaurantRepo struct {
	collection *mongo.Collection
}

func NewRestaurantRepo(db *mongo.Database) *RestaurantRepo {
	return &RestaurantRepo{
		collection: db.Collection("restaurants"),
	}
}

// EnsureIndexes creates unique indexes over the staff access codes so a code
// resolves to at most one restaurant.
func (r *RestaurantRepo) EnsureIndexes(ctx context.Context) error {
	for _, field := range []string{"owner_code", "waiter_code"} {
		indexModel := mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		}
		if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
			return fmt.Errorf("cannot create %s index: %w", field, err)
		}
	}
	return nil
}

func (r *RestaurantRepo) Create(ctx context.Context, rest *tenant.Restaurant) error {
	if rest == nil {
		return fmt.Errorf("restaurant is nil")
	}

	if _, err := r.collection.InsertOne(ctx, rest); err != nil {
		return fmt.Errorf("cannot create restaurant: %w", err)
	}

	return nil
}

func (r *RestaurantRepo) Get(ctx context.Context, id string) (*tenant.Restaurant, error) {
	var rest tenant.Restaurant
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rest)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get restaurant: %w", err)
	}
	return &rest, nil
}

func (r *RestaurantRepo) List(ctx context.Context) ([]*tenant.Restaurant, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("cannot list restaurants: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*tenant.Restaurant
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode restaurants: %w", err)
	}

	return result, nil
}

func (r *RestaurantRepo) FindByOwnerCode(ctx context.Context, code string) (*tenant.Restaurant, error) {
	return r.findByCode(ctx, "owner_code", code)
}

func (r *RestaurantRepo) FindByWaiterCode(ctx context.Context, code string) (*tenant.Restaurant, error) {
	return r.findByCode(ctx, "waiter_code", code)
}

func (r *RestaurantRepo) findByCode(ctx context.Context, field, code string) (*tenant.Restaurant, error) {
	var rest tenant.Restaurant
	err := r.collection.FindOne(ctx, bson.M{field: code}).Decode(&rest)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find restaurant by %s: %w", field, err)
	}
	return &rest, nil
}

func (r *RestaurantRepo) Save(ctx context.Context, rest *tenant.Restaurant) error {
	if rest == nil {
		return fmt.Errorf("restaurant is nil")
	}

	filter := bson.M{"_id": rest.ID}
	update := bson.M{"$set": rest}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update restaurant: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("restaurant not found")
	}

	return nil
}
