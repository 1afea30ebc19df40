package guest

import (
	"context"
	"fmt"
)

// LikeStore remembers which items a table has liked so the like button
// toggles instead of stacking. Flags never expire; a table's like survives
// the visit.
type LikeStore struct {
	kv KVStore
}

func NewLikeStore(kv KVStore) *LikeStore {
	return &LikeStore{kv: kv}
}

func likeKey(restaurantID, tableID, itemID string) string {
	return fmt.Sprintf("menyra:like:%s:%s:%s", restaurantID, tableID, itemID)
}

// Liked reports whether the table already liked the item.
func (s *LikeStore) Liked(ctx context.Context, restaurantID, tableID, itemID string) (bool, error) {
	_, ok, err := s.kv.Get(ctx, likeKey(restaurantID, tableID, itemID))
	return ok, err
}

// Toggle flips the like flag and returns the new state plus the counter
// delta to apply to the item.
func (s *LikeStore) Toggle(ctx context.Context, restaurantID, tableID, itemID string) (liked bool, delta int, err error) {
	key := likeKey(restaurantID, tableID, itemID)

	_, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, 0, err
	}

	if ok {
		if err := s.kv.Delete(ctx, key); err != nil {
			return false, 0, err
		}
		return false, -1, nil
	}

	if err := s.kv.Set(ctx, key, "1", 0); err != nil {
		return false, 0, err
	}
	return true, 1, nil
}
