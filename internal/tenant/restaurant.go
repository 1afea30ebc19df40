package tenant

import (
	"time"
)

// Restaurant is the tenant root. Its ID is a human-assigned slug rather than a
// UUID so guest links stay readable (karte?r=demo-lokal&t=T1).
type Restaurant struct {
	ID                string    `json:"id" bson:"_id"`
	Name              string    `json:"name" bson:"name"`
	OwnerName         string    `json:"owner_name,omitempty" bson:"owner_name,omitempty"`
	City              string    `json:"city,omitempty" bson:"city,omitempty"`
	Phone             string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Active            bool      `json:"active" bson:"active"`
	SubscriptionUntil string    `json:"subscription_until,omitempty" bson:"subscription_until,omitempty"`
	OwnerCode         string    `json:"owner_code" bson:"owner_code"`
	WaiterCode        string    `json:"waiter_code" bson:"waiter_code"`
	LogoURL           string    `json:"logo_url,omitempty" bson:"logo_url,omitempty"`
	OffersEnabled     bool      `json:"offers_enabled" bson:"offers_enabled"`
	TableCount        int       `json:"table_count" bson:"table_count"`
	YearPrice         float64   `json:"year_price,omitempty" bson:"year_price,omitempty"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

func (r *Restaurant) BeforeCreate() {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
}

func (r *Restaurant) BeforeUpdate() {
	r.UpdatedAt = time.Now()
}

// TodayISO returns the current date as YYYY-MM-DD, the format subscription
// dates are stored in.
func TodayISO() string {
	return time.Now().Format("2006-01-02")
}

// SubscriptionValid reports whether the subscription covers today. An empty
// SubscriptionUntil means unlimited. ISO dates compare correctly as strings.
func (r *Restaurant) SubscriptionValid(today string) bool {
	if r.SubscriptionUntil == "" {
		return true
	}
	return r.SubscriptionUntil >= today
}

// Operational gates every guest-facing surface: the restaurant must be active
// and its subscription must not have lapsed.
func (r *Restaurant) Operational(today string) bool {
	if !r.Active {
		return false
	}
	return r.SubscriptionValid(today)
}

// RenewSubscription extends the subscription one year from today, or one year
// from the current end when that is still in the future.
func (r *Restaurant) RenewSubscription(today string) {
	base := today
	if r.SubscriptionUntil > today {
		base = r.SubscriptionUntil
	}
	t, err := time.Parse("2006-01-02", base)
	if err != nil {
		t, _ = time.Parse("2006-01-02", today)
	}
	r.SubscriptionUntil = t.AddDate(1, 0, 0).Format("2006-01-02")
	r.BeforeUpdate()
}

// Tables returns the table identifiers T1..Tn for this restaurant.
func (r *Restaurant) Tables() []string {
	n := r.TableCount
	if n <= 0 {
		n = DefaultTableCount
	}
	tables := make([]string, n)
	for i := range tables {
		tables[i] = TableID(i + 1)
	}
	return tables
}
