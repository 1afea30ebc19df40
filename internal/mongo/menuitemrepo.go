package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/menyraclub/menyra/internal/menu"
)

type MenuItemRepo struct {
	collection *mongo.Collection
}

func NewMenuItemRepo(db *mongo.Database) *MenuItemRepo {
	return &MenuItemRepo{
		collection: db.Collection("menu_items"),
	}
}

// EnsureIndexes creates the restaurant scoping index.
func (r *MenuItemRepo) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "restaurant_id", Value: 1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create restaurant_id index: %w", err)
	}
	return nil
}

func (r *MenuItemRepo) Create(ctx context.Context, item *menu.MenuItem) error {
	if item == nil {
		return fmt.Errorf("menu item is nil")
	}

	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("cannot create menu item: %w", err)
	}

	return nil
}

func (r *MenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*menu.MenuItem, error) {
	var item menu.MenuItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get menu item: %w", err)
	}
	return &item, nil
}

func (r *MenuItemRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]*menu.MenuItem, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": restaurantID})
	if err != nil {
		return nil, fmt.Errorf("cannot list menu items: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*menu.MenuItem
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode menu items: %w", err)
	}

	return result, nil
}

func (r *MenuItemRepo) Save(ctx context.Context, item *menu.MenuItem) error {
	if item == nil {
		return fmt.Errorf("menu item is nil")
	}

	filter := bson.M{"_id": item.ID}
	update := bson.M{"$set": item}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update menu item: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("menu item not found")
	}

	return nil
}

func (r *MenuItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete menu item: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("menu item not found")
	}

	return nil
}

// IncrementCounters applies the social counter deltas in one atomic update so
// concurrent guests never lose increments.
func (r *MenuItemRepo) IncrementCounters(ctx context.Context, id uuid.UUID, likes, comments, ratings, ratingSum int) error {
	inc := bson.M{}
	if likes != 0 {
		inc["like_count"] = likes
	}
	if comments != 0 {
		inc["comment_count"] = comments
	}
	if ratings != 0 {
		inc["rating_count"] = ratings
	}
	if ratingSum != 0 {
		inc["rating_sum"] = ratingSum
	}
	if len(inc) == 0 {
		return nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": inc})
	if err != nil {
		return fmt.Errorf("cannot adjust menu item counters: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("menu item not found")
	}

	return nil
}
