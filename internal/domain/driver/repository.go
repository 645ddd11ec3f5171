package driver

import "context"

// Repository describes driver catalog reads needed by use cases.
type Repository interface {
	ListBySeason(ctx context.Context, seasonYear int) ([]Driver, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Driver, error)
}
