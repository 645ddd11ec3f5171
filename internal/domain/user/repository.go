package user

import "context"

// Repository describes user lookups needed by use cases.
type Repository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]User, error)
}
