package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/davidriba/f1-fantasy-league/internal/domain/driver"
	qb "github.com/davidriba/f1-fantasy-league/internal/platform/querybuilder"
)

var driverSelectColumns = []string{
	"id",
	"code",
	"first_name",
	"last_name",
	"country_code",
	"constructor_id",
	"season_year",
	"created_at",
	"updated_at",
	"deleted_at",
}

// DriverRepository reads the driver catalog. The catalog is seeded by
// migrations and updated out of band, so there is no write path here.
type DriverRepository struct {
	ext dbtx
}

func NewDriverRepository(db *sqlx.DB) *DriverRepository {
	return &DriverRepository{ext: db}
}

func (r *DriverRepository) ListBySeason(ctx context.Context, seasonYear int) ([]driver.Driver, error) {
	query, args, err := qb.Select(driverSelectColumns...).
		From("drivers").
		Where(
			qb.Eq("season_year", seasonYear),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select drivers by season query: %w", err)
	}

	var rows []driverTableModel
	if err := r.ext.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select drivers by season: %w", err)
	}

	return driversToDomain(rows), nil
}

func (r *DriverRepository) GetByIDs(ctx context.Context, ids []int64) ([]driver.Driver, error) {
	if len(ids) == 0 {
		return []driver.Driver{}, nil
	}

	query, args, err := qb.Select(driverSelectColumns...).
		From("drivers").
		Where(
			qb.In("id", int64SliceToAny(ids)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select drivers by ids query: %w", err)
	}

	var rows []driverTableModel
	if err := r.ext.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select drivers by ids: %w", err)
	}

	return driversToDomain(rows), nil
}

func driversToDomain(rows []driverTableModel) []driver.Driver {
	out := make([]driver.Driver, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

func int64SliceToAny(items []int64) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
