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

type CommentRepo struct {
	collection *mongo.Collection
}

func NewCommentRepo(db *mongo.Database) *CommentRepo {
	return &CommentRepo{
		collection: db.Collection("comments"),
	}
}

func (r *CommentRepo) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "menu_item_id", Value: 1}, {Key: "created_at", Value: -1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create comment index: %w", err)
	}
	return nil
}

func (r *CommentRepo) Create(ctx context.Context, comment *menu.Comment) error {
	if comment == nil {
		return fmt.Errorf("comment is nil")
	}

	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("cannot create comment: %w", err)
	}

	return nil
}

// ListByMenuItem returns an item's comments newest first.
func (r *CommentRepo) ListByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]*menu.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"menu_item_id": menuItemID}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list comments: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*menu.Comment
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode comments: %w", err)
	}

	return result, nil
}
