package menu

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCommentTextRequired = errors.New("comment text is required")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
)

// Comment is guest feedback on a menu item. Rating 0 means "no rating"; a set
// rating contributes to the item's rating counters.
type Comment struct {
	ID         uuid.UUID `json:"id" bson:"_id"`
	MenuItemID uuid.UUID `json:"menu_item_id" bson:"menu_item_id"`
	Text       string    `json:"text" bson:"text"`
	Rating     int       `json:"rating,omitempty" bson:"rating,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

func NewComment(menuItemID uuid.UUID, text string, rating int) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentTextRequired
	}
	if rating != 0 && (rating < 1 || rating > 5) {
		return nil, ErrInvalidRating
	}
	return &Comment{
		ID:         uuid.New(),
		MenuItemID: menuItemID,
		Text:       text,
		Rating:     rating,
		CreatedAt:  time.Now(),
	}, nil
}

func (c *Comment) GetID() uuid.UUID {
	return c.ID
}

func (c *Comment) ResourceType() string {
	return "comment"
}
