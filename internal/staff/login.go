package staff

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/menyraclub/menyra/internal/tenant"
)

// Staff roles. The owner sees the admin dashboard, the waiter the service
// dashboard; owner codes also open the waiter view.
const (
	RoleOwner  = "owner"
	RoleWaiter = "waiter"
)

// DefaultSessionTTL is how long a dashboard stays signed in without
// re-entering the code.
const DefaultSessionTTL = 12 * time.Hour

var (
	ErrCodeRequired   = errors.New("access code is required")
	ErrInvalidCode    = errors.New("unknown access code")
	ErrInvalidSession = errors.New("session expired or unknown")
)

// Session is an authenticated dashboard: which restaurant, in which role.
type Session struct {
	Token        string    `json:"token"`
	RestaurantID string    `json:"restaurant_id"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// KVStore is the key-value surface sessions persist in.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Authenticator turns access codes into dashboard sessions. Codes are the
// only staff credential; a code names both the restaurant and the role.
type Authenticator struct {
	rests    tenant.RestaurantRepo
	sessions KVStore
	ttl      time.Duration
}

func NewAuthenticator(rests tenant.RestaurantRepo, sessions KVStore) *Authenticator {
	return &Authenticator{
		rests:    rests,
		sessions: sessions,
		ttl:      DefaultSessionTTL,
	}
}

func sessionKey(token string) string {
	return "menyra:session:" + token
}

// Login resolves a code to a restaurant. Owner codes are checked first, so a
// code colliding across roles acts as the owner code. Empty codes are
// rejected locally without touching the store.
func (a *Authenticator) Login(ctx context.Context, code string) (*Session, *tenant.Restaurant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil, ErrCodeRequired
	}

	role := RoleOwner
	rest, err := a.rests.FindByOwnerCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if rest == nil {
		role = RoleWaiter
		rest, err = a.rests.FindByWaiterCode(ctx, code)
		if err != nil {
			return nil, nil, err
		}
	}
	if rest == nil {
		return nil, nil, ErrInvalidCode
	}

	token, err := generateToken()
	if err != nil {
		return nil, nil, err
	}

	sess := &Session{
		Token:        token,
		RestaurantID: rest.ID,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot marshal session: %w", err)
	}
	if err := a.sessions.Set(ctx, sessionKey(token), string(payload), a.ttl); err != nil {
		return nil, nil, err
	}

	return sess, rest, nil
}

// Resume looks a token up, so a reopened dashboard tab skips the code prompt.
func (a *Authenticator) Resume(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	val, ok, err := a.sessions.Get(ctx, sessionKey(token))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidSession
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("cannot unmarshal session: %w", err)
	}
	return &sess, nil
}

// Logout drops the session.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.sessions.Delete(ctx, sessionKey(token))
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cannot generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
