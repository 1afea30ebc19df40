package guest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/menyraclub/menyra/internal/call"
	"github.com/menyraclub/menyra/internal/menu"
	"github.com/menyraclub/menyra/internal/order"
	"github.com/menyraclub/menyra/internal/tenant"
)

type mockKV struct {
	mu   sync.Mutex
	data map[string]string

	GetFunc func(ctx context.Context, key string) (string, bool, error)
	SetFunc func(ctx context.Context, key, value string, ttl time.Duration) error
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string]string)}
}

func (m *mockKV) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	return val, ok, nil
}

func (m *mockKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type mockRestaurantRepo struct {
	mu    sync.Mutex
	rests map[string]*tenant.Restaurant
}

func newMockRestaurantRepo() *mockRestaurantRepo {
	return &mockRestaurantRepo{rests: make(map[string]*tenant.Restaurant)}
}

func (m *mockRestaurantRepo) Create(ctx context.Context, rest *tenant.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rests[rest.ID] = rest
	return nil
}

func (m *mockRestaurantRepo) Get(ctx context.Context, id string) (*tenant.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rests[id], nil
}

func (m *mockRestaurantRepo) List(ctx context.Context) ([]*tenant.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*tenant.Restaurant
	for _, r := range m.rests {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRestaurantRepo) FindByOwnerCode(ctx context.Context, code string) (*tenant.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rests {
		if r.OwnerCode == code {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockRestaurantRepo) FindByWaiterCode(ctx context.Context, code string) (*tenant.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rests {
		if r.WaiterCode == code {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockRestaurantRepo) Save(ctx context.Context, rest *tenant.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rests[rest.ID] = rest
	return nil
}

type mockMenuItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*menu.MenuItem

	IncrementFunc func(ctx context.Context, id uuid.UUID, likes, comments, ratings, ratingSum int) error
}

func newMockMenuItemRepo() *mockMenuItemRepo {
	return &mockMenuItemRepo{items: make(map[uuid.UUID]*menu.MenuItem)}
}

func (m *mockMenuItemRepo) Create(ctx context.Context, item *menu.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *mockMenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*menu.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id], nil
}

func (m *mockMenuItemRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]*menu.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*menu.MenuItem
	for _, item := range m.items {
		if item.RestaurantID == restaurantID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockMenuItemRepo) Save(ctx context.Context, item *menu.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *mockMenuItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *mockMenuItemRepo) IncrementCounters(ctx context.Context, id uuid.UUID, likes, comments, ratings, ratingSum int) error {
	if m.IncrementFunc != nil {
		return m.IncrementFunc(ctx, id, likes, comments, ratings, ratingSum)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		item.LikeCount += likes
		item.CommentCount += comments
		item.RatingCount += ratings
		item.RatingSum += ratingSum
	}
	return nil
}

type mockOfferRepo struct {
	mu     sync.Mutex
	offers map[uuid.UUID]*menu.Offer
}

func newMockOfferRepo() *mockOfferRepo {
	return &mockOfferRepo{offers: make(map[uuid.UUID]*menu.Offer)}
}

func (m *mockOfferRepo) Create(ctx context.Context, offer *menu.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers[offer.ID] = offer
	return nil
}

func (m *mockOfferRepo) Get(ctx context.Context, id uuid.UUID) (*menu.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offers[id], nil
}

func (m *mockOfferRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]*menu.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*menu.Offer
	for _, o := range m.offers {
		if o.RestaurantID == restaurantID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOfferRepo) Save(ctx context.Context, offer *menu.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers[offer.ID] = offer
	return nil
}

func (m *mockOfferRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.offers, id)
	return nil
}

type mockCommentRepo struct {
	mu       sync.Mutex
	comments []*menu.Comment
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *menu.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments = append(m.comments, comment)
	return nil
}

func (m *mockCommentRepo) ListByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]*menu.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*menu.Comment
	for _, c := range m.comments {
		if c.MenuItemID == menuItemID {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*order.Order

	CreateFunc func(ctx context.Context, o *order.Order) error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
}

func (m *mockOrderRepo) Create(ctx context.Context, o *order.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id], nil
}

func (m *mockOrderRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*order.Order
	for _, o := range m.orders {
		if o.RestaurantID == restaurantID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockOrderRepo) LatestForTable(ctx context.Context, restaurantID, table string) (*order.Order, error) {
	orders, err := m.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.Table == table {
			return o, nil
		}
	}
	return nil, nil
}

func (m *mockOrderRepo) Save(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

type mockCallRepo struct {
	mu    sync.Mutex
	calls map[uuid.UUID]*call.Call
}

func newMockCallRepo() *mockCallRepo {
	return &mockCallRepo{calls: make(map[uuid.UUID]*call.Call)}
}

func (m *mockCallRepo) Create(ctx context.Context, c *call.Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.calls {
		if existing.RestaurantID == c.RestaurantID && existing.TableID == c.TableID && existing.Status == call.StatusOpen {
			return call.ErrDuplicateOpen
		}
	}
	m.calls[c.ID] = c
	return nil
}

func (m *mockCallRepo) Get(ctx context.Context, id uuid.UUID) (*call.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[id], nil
}

func (m *mockCallRepo) FindOpen(ctx context.Context, restaurantID, tableID string) (*call.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.RestaurantID == restaurantID && c.TableID == tableID && c.Status == call.StatusOpen {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCallRepo) ListOpenByRestaurant(ctx context.Context, restaurantID string) ([]*call.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*call.Call
	for _, c := range m.calls {
		if c.RestaurantID == restaurantID && c.Status == call.StatusOpen {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCallRepo) Save(ctx context.Context, c *call.Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[c.ID] = c
	return nil
}

type mockPublisher struct {
	mu        sync.Mutex
	published []publishedMsg
}

type publishedMsg struct {
	topic string
	msg   []byte
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMsg{topic: topic, msg: msg})
	return nil
}

func (m *mockPublisher) messages() []publishedMsg {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishedMsg, len(m.published))
	copy(out, m.published)
	return out
}
