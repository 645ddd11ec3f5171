package memory

import (
	"context"
	"sync"

	"github.com/davidriba/f1-fantasy-league/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[int64]user.User
}

func NewUserRepository(users []user.User) *UserRepository {
	items := make(map[int64]user.User, len(users))
	for _, u := range users {
		items[u.ID] = u
	}

	return &UserRepository{items: items}
}

func (r *UserRepository) GetByIDs(_ context.Context, ids []int64) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.items[id]; ok {
			out = append(out, u)
		}
	}

	return out, nil
}
