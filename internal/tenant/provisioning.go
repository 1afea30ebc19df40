package tenant

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	// DefaultTableCount is used when a tenant is provisioned without an
	// explicit table count.
	DefaultTableCount = 10

	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

var ErrNameRequired = errors.New("restaurant name is required")

// ProvisionRequest carries the superadmin's input for a new tenant.
type ProvisionRequest struct {
	Name       string  `json:"name"`
	OwnerName  string  `json:"owner_name,omitempty"`
	City       string  `json:"city,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	TableCount int     `json:"table_count,omitempty"`
	YearPrice  float64 `json:"year_price,omitempty"`
	LogoURL    string  `json:"logo_url,omitempty"`
}

// Provision creates a new restaurant: slug id (suffixed on collision), fresh
// owner and waiter codes, and a subscription running one year from today.
func Provision(ctx context.Context, repo RestaurantRepo, req ProvisionRequest) (*Restaurant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	id, err := uniqueSlug(ctx, repo, Slugify(name))
	if err != nil {
		return nil, err
	}

	rest := &Restaurant{
		ID:            id,
		Name:          name,
		OwnerName:     strings.TrimSpace(req.OwnerName),
		City:          strings.TrimSpace(req.City),
		Phone:         strings.TrimSpace(req.Phone),
		Active:        true,
		OwnerCode:     GenerateCode(),
		WaiterCode:    GenerateCode(),
		LogoURL:       strings.TrimSpace(req.LogoURL),
		OffersEnabled: true,
		TableCount:    req.TableCount,
		YearPrice:     req.YearPrice,
	}
	if rest.TableCount <= 0 {
		rest.TableCount = DefaultTableCount
	}
	rest.RenewSubscription(TodayISO())
	rest.BeforeCreate()

	if err := repo.Create(ctx, rest); err != nil {
		return nil, fmt.Errorf("cannot create restaurant: %w", err)
	}
	return rest, nil
}

func uniqueSlug(ctx context.Context, repo RestaurantRepo, base string) (string, error) {
	if base == "" {
		base = "lokal"
	}
	candidate := base
	for i := 2; ; i++ {
		existing, err := repo.Get(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("cannot check slug %s: %w", candidate, err)
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Slugify lowercases a name and collapses everything that is not a letter or
// digit into single dashes.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// GenerateCode returns a short shared-secret login code. The alphabet skips
// easily confused characters (0/O, 1/I).
func GenerateCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform's entropy source is broken
		panic(fmt.Sprintf("cannot read random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// TableID formats the n-th table identifier (1-based): T1, T2, ...
func TableID(n int) string {
	return fmt.Sprintf("T%d", n)
}
