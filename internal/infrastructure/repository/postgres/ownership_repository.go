package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
	qb "github.com/davidriba/f1-fantasy-league/internal/platform/querybuilder"
)

var ownershipSelectColumns = []string{
	"driver_id",
	"league_id",
	"owner_id",
	"is_listed_for_sale",
	"acquisition_price",
	"locked_until",
	"version",
	"created_at",
	"updated_at",
}

// OwnershipRepository persists the per-league ownership ledger. When bound
// to a unit of work, Get locks the row so the read-validate-write cycle of
// a trade serializes per (driver, league).
type OwnershipRepository struct {
	ext       dbtx
	forUpdate bool
}

func NewOwnershipRepository(db *sqlx.DB) *OwnershipRepository {
	return &OwnershipRepository{ext: db}
}

func (r *OwnershipRepository) Get(ctx context.Context, driverID, leagueID int64) (market.Ownership, bool, error) {
	query := `
SELECT driver_id, league_id, owner_id, is_listed_for_sale, acquisition_price, locked_until, version, created_at, updated_at
FROM driver_ownerships
WHERE driver_id = $1
  AND league_id = $2`
	if r.forUpdate {
		query += "\nFOR UPDATE"
	}

	var row ownershipTableModel
	if err := r.ext.GetContext(ctx, &row, query, driverID, leagueID); err != nil {
		if isNotFound(err) {
			return market.Ownership{}, false, nil
		}
		return market.Ownership{}, false, fmt.Errorf("get ownership: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *OwnershipRepository) ListAll(ctx context.Context, leagueID int64) ([]market.Ownership, error) {
	return r.list(ctx, qb.Eq("league_id", leagueID))
}

func (r *OwnershipRepository) ListFree(ctx context.Context, leagueID int64) ([]market.Ownership, error) {
	return r.list(ctx, qb.Eq("league_id", leagueID), qb.IsNull("owner_id"))
}

func (r *OwnershipRepository) ListForSale(ctx context.Context, leagueID int64) ([]market.Ownership, error) {
	return r.list(ctx, qb.Eq("league_id", leagueID), qb.Eq("is_listed_for_sale", true))
}

func (r *OwnershipRepository) ListOwnedBy(ctx context.Context, userID, leagueID int64) ([]market.Ownership, error) {
	return r.list(ctx, qb.Eq("league_id", leagueID), qb.Eq("owner_id", userID))
}

func (r *OwnershipRepository) list(ctx context.Context, conditions ...qb.Condition) ([]market.Ownership, error) {
	query, args, err := qb.Select(ownershipSelectColumns...).
		From("driver_ownerships").
		Where(conditions...).
		OrderBy("driver_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build ownership list query: %w", err)
	}

	var rows []ownershipTableModel
	if err := r.ext.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ownerships: %w", err)
	}

	out := make([]market.Ownership, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *OwnershipRepository) Create(ctx context.Context, ownership market.Ownership) error {
	const query = `
INSERT INTO driver_ownerships (driver_id, league_id, owner_id, is_listed_for_sale, acquisition_price, locked_until, version, created_at, updated_at)
VALUES (:driver_id, :league_id, :owner_id, :is_listed_for_sale, :acquisition_price, :locked_until, 1, :created_at, :updated_at)`

	sqlQuery, args, err := sqlx.Named(query, ownershipArgs(ownership))
	if err != nil {
		return fmt.Errorf("bind ownership insert: %w", err)
	}

	if _, err := r.ext.ExecContext(ctx, r.ext.Rebind(sqlQuery), args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ownership for driver %d in league %d already exists", ownership.DriverID, ownership.LeagueID)
		}
		return fmt.Errorf("insert ownership: %w", err)
	}

	return nil
}

func (r *OwnershipRepository) Update(ctx context.Context, ownership market.Ownership) error {
	const query = `
UPDATE driver_ownerships
SET owner_id = :owner_id,
    is_listed_for_sale = :is_listed_for_sale,
    acquisition_price = :acquisition_price,
    locked_until = :locked_until,
    version = version + 1,
    updated_at = :updated_at
WHERE driver_id = :driver_id
  AND league_id = :league_id
  AND version = :version`

	sqlQuery, args, err := sqlx.Named(query, ownershipArgs(ownership))
	if err != nil {
		return fmt.Errorf("bind ownership update: %w", err)
	}

	result, err := r.ext.ExecContext(ctx, r.ext.Rebind(sqlQuery), args...)
	if err != nil {
		return fmt.Errorf("update ownership: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ownership update rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: driver %d league %d", market.ErrStaleOwnership, ownership.DriverID, ownership.LeagueID)
	}

	return nil
}
