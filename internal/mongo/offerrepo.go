package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menyraclub/menyra/internal/menu"
)

type OfferRepo struct {
	collection *mongo.Collection
}

func NewOfferRepo(db *mongo.Database) *OfferRepo {
	return &OfferRepo{
		collection: db.Collection("offers"),
	}
}

func (r *OfferRepo) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "sort_order", Value: 1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create offer index: %w", err)
	}
	return nil
}

func (r *OfferRepo) Create(ctx context.Context, offer *menu.Offer) error {
	if offer == nil {
		return fmt.Errorf("offer is nil")
	}

	if _, err := r.collection.InsertOne(ctx, offer); err != nil {
		return fmt.Errorf("cannot create offer: %w", err)
	}

	return nil
}

func (r *OfferRepo) Get(ctx context.Context, id uuid.UUID) (*menu.Offer, error) {
	var offer menu.Offer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&offer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get offer: %w", err)
	}
	return &offer, nil
}

func (r *OfferRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]*menu.Offer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"restaurant_id": restaurantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list offers: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*menu.Offer
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode offers: %w", err)
	}

	return result, nil
}

func (r *OfferRepo) Save(ctx context.Context, offer *menu.Offer) error {
	if offer == nil {
		return fmt.Errorf("offer is nil")
	}

	filter := bson.M{"_id": offer.ID}
	update := bson.M{"$set": offer}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update offer: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("offer not found")
	}

	return nil
}

func (r *OfferRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete offer: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("offer not found")
	}

	return nil
}
