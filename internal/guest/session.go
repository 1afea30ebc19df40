package guest

import "net/http"

// Defaults applied when a guest lands without scanning a code, matching the
// demo links on the marketing pages.
const (
	DefaultRestaurantID = "test-restaurant"
	DefaultTable        = "T1"
)

// Session identifies a guest by the restaurant and table from the scanned QR
// link. Guests are anonymous beyond that.
type Session struct {
	RestaurantID string
	TableID      string
}

// SessionFromRequest reads the r and t query parameters, falling back to the
// demo restaurant and table when absent.
func SessionFromRequest(r *http.Request) Session {
	s := Session{
		RestaurantID: r.URL.Query().Get("r"),
		TableID:      r.URL.Query().Get("t"),
	}
	if s.RestaurantID == "" {
		s.RestaurantID = DefaultRestaurantID
	}
	if s.TableID == "" {
		s.TableID = DefaultTable
	}
	return s
}
