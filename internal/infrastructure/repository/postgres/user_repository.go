package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/davidriba/f1-fantasy-league/internal/domain/user"
	qb "github.com/davidriba/f1-fantasy-league/internal/platform/querybuilder"
)

var userSelectColumns = []string{
	"id",
	"external_id",
	"user_name",
}

// UserRepository reads user accounts. Accounts are provisioned by the
// identity provider sync, so only lookups live here.
type UserRepository struct {
	ext dbtx
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{ext: db}
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]user.User, error) {
	if len(ids) == 0 {
		return []user.User{}, nil
	}

	query, args, err := qb.Select(userSelectColumns...).
		From("users").
		Where(qb.In("id", int64SliceToAny(ids))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select users by ids query: %w", err)
	}

	var rows []userTableModel
	if err := r.ext.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select users by ids: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
