package memory

import (
	"context"
	"sync"

	"github.com/davidriba/f1-fantasy-league/internal/domain/driver"
)

type DriverRepository struct {
	mu     sync.RWMutex
	items  map[int64]driver.Driver
	orders []int64
}

func NewDriverRepository(drivers []driver.Driver) *DriverRepository {
	items := make(map[int64]driver.Driver, len(drivers))
	orders := make([]int64, 0, len(drivers))

	for _, d := range drivers {
		items[d.ID] = d
		orders = append(orders, d.ID)
	}

	return &DriverRepository{
		items:  items,
		orders: orders,
	}
}

func (r *DriverRepository) ListBySeason(_ context.Context, _ int) ([]driver.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]driver.Driver, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}

	return out, nil
}

func (r *DriverRepository) GetByIDs(_ context.Context, ids []int64) ([]driver.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]driver.Driver, 0, len(ids))
	for _, id := range ids {
		if d, ok := r.items[id]; ok {
			out = append(out, d)
		}
	}

	return out, nil
}
