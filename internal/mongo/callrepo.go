package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menyraclub/menyra/internal/call"
)

type CallRepo struct {
	collection *mongo.Collection
}

func NewCallRepo(db *mongo.Database) *CallRepo {
	return &CallRepo{
		collection: db.Collection("calls"),
	}
}

// EnsureIndexes creates a partial unique index over open calls, making the
// single open call per table constraint hold under concurrent presses.
func (r *CallRepo) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "table_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": call.StatusOpen}),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create open call index: %w", err)
	}
	return nil
}

func (r *CallRepo) Create(ctx context.Context, c *call.Call) error {
	if c == nil {
		return fmt.Errorf("call is nil")
	}

	if _, err := r.collection.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return call.ErrDuplicateOpen
		}
		return fmt.Errorf("cannot create call: %w", err)
	}

	return nil
}

func (r *CallRepo) Get(ctx context.Context, id uuid.UUID) (*call.Call, error) {
	var c call.Call
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get call: %w", err)
	}
	return &c, nil
}

func (r *CallRepo) FindOpen(ctx context.Context, restaurantID, tableID string) (*call.Call, error) {
	filter := bson.M{
		"restaurant_id": restaurantID,
		"table_id":      tableID,
		"status":        call.StatusOpen,
	}

	var c call.Call
	err := r.collection.FindOne(ctx, filter).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find open call: %w", err)
	}
	return &c, nil
}

// ListOpenByRestaurant returns open calls oldest first, the order waiters
// should clear them in.
func (r *CallRepo) ListOpenByRestaurant(ctx context.Context, restaurantID string) ([]*call.Call, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	filter := bson.M{"restaurant_id": restaurantID, "status": call.StatusOpen}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list open calls: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*call.Call
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode calls: %w", err)
	}

	return result, nil
}

func (r *CallRepo) Save(ctx context.Context, c *call.Call) error {
	if c == nil {
		return fmt.Errorf("call is nil")
	}

	filter := bson.M{"_id": c.ID}
	update := bson.M{"$set": c}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update call: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("call not found")
	}

	return nil
}
