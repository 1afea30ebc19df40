package order

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*Order

	CreateFunc         func(ctx context.Context, order *Order) error
	GetFunc            func(ctx context.Context, id uuid.UUID) (*Order, error)
	ListFunc           func(ctx context.Context, restaurantID string) ([]*Order, error)
	LatestForTableFunc func(ctx context.Context, restaurantID, table string) (*Order, error)
	SaveFunc           func(ctx context.Context, order *Order) error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*Order)}
}

func (m *mockOrderRepo) Create(ctx context.Context, order *Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id], nil
}

func (m *mockOrderRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]*Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, restaurantID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Order
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

func (m *mockOrderRepo) LatestForTable(ctx context.Context, restaurantID, table string) (*Order, error) {
	if m.LatestForTableFunc != nil {
		return m.LatestForTableFunc(ctx, restaurantID, table)
	}
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

func (m *mockOrderRepo) Save(ctx context.Context, order *Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

type mockPublisher struct {
	mu        sync.Mutex
	published []publishedMsg

	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

type publishedMsg struct {
	topic string
	msg   []byte
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
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
