package menu

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Offer is a promotional slide, optionally linked to a menu item that fills in
// whatever display fields the offer leaves blank.
type Offer struct {
	ID           uuid.UUID  `json:"id" bson:"_id"`
	RestaurantID string     `json:"restaurant_id" bson:"restaurant_id"`
	Title        string     `json:"title,omitempty" bson:"title,omitempty"`
	Text         string     `json:"text,omitempty" bson:"text,omitempty"`
	ImageURL     string     `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Price        *float64   `json:"price,omitempty" bson:"price,omitempty"`
	Active       bool       `json:"active" bson:"active"`
	SortOrder    int        `json:"sort_order" bson:"sort_order"`
	MenuItemID   *uuid.UUID `json:"menu_item_id,omitempty" bson:"menu_item_id,omitempty"`
	AddToCart    bool       `json:"add_to_cart" bson:"add_to_cart"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}

func NewOffer(restaurantID string) *Offer {
	o := &Offer{
		RestaurantID: restaurantID,
		Active:       true,
	}
	o.EnsureID()
	return o
}

func (o *Offer) GetID() uuid.UUID {
	return o.ID
}

func (o *Offer) ResourceType() string {
	return "offer"
}

func (o *Offer) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
}

func (o *Offer) BeforeCreate() {
	o.EnsureID()
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
}

func (o *Offer) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

// OfferDisplay is a fully resolved slide: every field filled from the offer or
// its linked menu item.
type OfferDisplay struct {
	OfferID    uuid.UUID  `json:"offer_id"`
	Title      string     `json:"title"`
	Text       string     `json:"text"`
	ImageURL   string     `json:"image_url"`
	Price      *float64   `json:"price,omitempty"`
	AddToCart  bool       `json:"add_to_cart"`
	MenuItemID *uuid.UUID `json:"menu_item_id,omitempty"`
	// CartItemID is what a cart line for this slide gets: the linked item's id
	// when there is one, else a synthetic "offer:<id>" id.
	CartItemID string `json:"cart_item_id,omitempty"`
}

// ResolveDisplay merges an offer with its optionally linked menu item. The
// offer's own field always wins; the linked item fills blanks. An explicit
// zero price on the offer is a real price, not a blank.
func ResolveDisplay(offer *Offer, linked *MenuItem) OfferDisplay {
	d := OfferDisplay{
		OfferID:   offer.ID,
		Title:     offer.Title,
		Text:      offer.Text,
		ImageURL:  offer.ImageURL,
		Price:     offer.Price,
		AddToCart: offer.AddToCart,
	}
	if linked != nil {
		d.MenuItemID = &linked.ID
		if d.Title == "" {
			d.Title = linked.Name
		}
		if d.Text == "" {
			d.Text = linked.Description
		}
		if d.ImageURL == "" {
			d.ImageURL = linked.ImageURL
		}
		if d.Price == nil {
			price := linked.Price
			d.Price = &price
		}
	}
	if d.AddToCart {
		if linked != nil {
			d.CartItemID = linked.ID.String()
		} else if d.Price != nil {
			d.CartItemID = "offer:" + offer.ID.String()
		}
	}
	return d
}

// ActiveOffers filters to active offers ordered by sort order ascending.
func ActiveOffers(offers []*Offer) []*Offer {
	var out []*Offer
	for _, o := range offers {
		if o.Active {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}
