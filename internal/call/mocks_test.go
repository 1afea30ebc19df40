package call

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type mockCallRepo struct {
	mu    sync.Mutex
	calls map[uuid.UUID]*Call

	CreateFunc   func(ctx context.Context, call *Call) error
	FindOpenFunc func(ctx context.Context, restaurantID, tableID string) (*Call, error)
}

func newMockCallRepo() *mockCallRepo {
	return &mockCallRepo{calls: make(map[uuid.UUID]*Call)}
}

func (m *mockCallRepo) Create(ctx context.Context, call *Call) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, call)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.RestaurantID == call.RestaurantID && c.TableID == call.TableID && c.Status == StatusOpen {
			return ErrDuplicateOpen
		}
	}
	m.calls[call.ID] = call
	return nil
}

func (m *mockCallRepo) Get(ctx context.Context, id uuid.UUID) (*Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[id], nil
}

func (m *mockCallRepo) FindOpen(ctx context.Context, restaurantID, tableID string) (*Call, error) {
	if m.FindOpenFunc != nil {
		return m.FindOpenFunc(ctx, restaurantID, tableID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.RestaurantID == restaurantID && c.TableID == tableID && c.Status == StatusOpen {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCallRepo) ListOpenByRestaurant(ctx context.Context, restaurantID string) ([]*Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Call
	for _, c := range m.calls {
		if c.RestaurantID == restaurantID && c.Status == StatusOpen {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockCallRepo) Save(ctx context.Context, call *Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[call.ID] = call
	return nil
}
