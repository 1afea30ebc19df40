package menu

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item types. Items without an explicit type are classified from their
// category text, see InferType.
const (
	TypeFood  = "food"
	TypeDrink = "drink"
)

// MenuItem is one offerable product of a restaurant. Guests only ever see
// available items; Available doubles as a soft delete.
type MenuItem struct {
	ID              uuid.UUID `json:"id" bson:"_id"`
	RestaurantID    string    `json:"restaurant_id" bson:"restaurant_id"`
	Name            string    `json:"name" bson:"name"`
	Description     string    `json:"description,omitempty" bson:"description,omitempty"`
	LongDescription string    `json:"long_description,omitempty" bson:"long_description,omitempty"`
	Price           float64   `json:"price" bson:"price"`
	Category        string    `json:"category" bson:"category"`
	Type            string    `json:"type,omitempty" bson:"type,omitempty"`
	Available       bool      `json:"available" bson:"available"`
	ImageURL        string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	VideoURL        string    `json:"video_url,omitempty" bson:"video_url,omitempty"`
	LikeCount       int       `json:"like_count" bson:"like_count"`
	CommentCount    int       `json:"comment_count" bson:"comment_count"`
	RatingCount     int       `json:"rating_count" bson:"rating_count"`
	RatingSum       int       `json:"rating_sum" bson:"rating_sum"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

func NewMenuItem(restaurantID string) *MenuItem {
	item := &MenuItem{
		RestaurantID: restaurantID,
		Available:    true,
	}
	item.EnsureID()
	return item
}

func (m *MenuItem) GetID() uuid.UUID {
	return m.ID
}

func (m *MenuItem) ResourceType() string {
	return "menu-item"
}

func (m *MenuItem) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

func (m *MenuItem) BeforeCreate() {
	m.EnsureID()
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
}

func (m *MenuItem) BeforeUpdate() {
	m.UpdatedAt = time.Now()
}

// Normalize applies the fallback defaults once, at the store boundary:
// counters and price never negative, category never empty, type resolved.
func (m *MenuItem) Normalize() {
	if m.Name == "" {
		m.Name = "Produkt"
	}
	if m.Category == "" {
		m.Category = "Sonstiges"
	}
	if m.Price < 0 {
		m.Price = 0
	}
	if m.LikeCount < 0 {
		m.LikeCount = 0
	}
	if m.CommentCount < 0 {
		m.CommentCount = 0
	}
	if m.RatingCount < 0 {
		m.RatingCount = 0
	}
	if m.RatingSum < 0 {
		m.RatingSum = 0
	}
	m.Type = InferType(m.Type, m.Category)
}

// AverageRating returns the mean rating, or 0 when nothing was rated.
func (m *MenuItem) AverageRating() float64 {
	if m.RatingCount <= 0 {
		return 0
	}
	return float64(m.RatingSum) / float64(m.RatingCount)
}

// drinkWords is the multilingual beverage keyword set categories are matched
// against (Albanian, German, English).
var drinkWords = []string{
	"getränke",
	"getraenke",
	"drinks",
	"freskuese",
	"cafe",
	"kafe",
	"kafe & espresso",
	"cappuccino",
	"latte",
	"çaj",
	"caj",
	"ujë",
	"uje",
	"lëngje",
	"lengje",
	"birra",
	"verë",
	"vere",
	"koktej",
	"cocktail",
	"energjike",
}

// InferType resolves an item's type. An explicit food/drink value wins;
// otherwise the category is matched case-insensitively against the beverage
// keyword set, defaulting to food.
func InferType(explicit, category string) string {
	if explicit == TypeFood || explicit == TypeDrink {
		return explicit
	}
	cat := strings.ToLower(category)
	for _, w := range drinkWords {
		if strings.Contains(cat, w) {
			return TypeDrink
		}
	}
	return TypeFood
}
