package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
)

type RosterRepository struct {
	ext dbtx
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{ext: db}
}

func (r *RosterRepository) GetActive(ctx context.Context, userID, leagueID int64) (market.Roster, bool, error) {
	const query = `
SELECT id, user_id, league_id, team_name, driver_1_id, driver_2_id, driver_3_id, reserve_driver_id, constructor_id, total_points, budget_remaining, is_active, created_at, updated_at
FROM user_teams
WHERE user_id = $1
  AND league_id = $2
  AND is_active`

	var row rosterTableModel
	if err := r.ext.GetContext(ctx, &row, query, userID, leagueID); err != nil {
		if isNotFound(err) {
			return market.Roster{}, false, nil
		}
		return market.Roster{}, false, fmt.Errorf("get active roster: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *RosterRepository) Create(ctx context.Context, roster market.Roster) (int64, error) {
	const query = `
INSERT INTO user_teams (user_id, league_id, team_name, driver_1_id, driver_2_id, driver_3_id, reserve_driver_id, constructor_id, total_points, budget_remaining, is_active, created_at, updated_at)
VALUES (:user_id, :league_id, :team_name, :driver_1_id, :driver_2_id, :driver_3_id, :reserve_driver_id, :constructor_id, :total_points, :budget_remaining, :is_active, :created_at, :updated_at)
RETURNING id`

	sqlQuery, args, err := sqlx.Named(query, rosterArgs(roster))
	if err != nil {
		return 0, fmt.Errorf("bind roster insert: %w", err)
	}

	var id int64
	if err := r.ext.QueryRowxContext(ctx, r.ext.Rebind(sqlQuery), args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("user %d already has an active roster in league %d", roster.UserID, roster.LeagueID)
		}
		return 0, fmt.Errorf("insert roster: %w", err)
	}

	return id, nil
}

func (r *RosterRepository) Update(ctx context.Context, roster market.Roster) error {
	const query = `
UPDATE user_teams
SET team_name = :team_name,
    driver_1_id = :driver_1_id,
    driver_2_id = :driver_2_id,
    driver_3_id = :driver_3_id,
    reserve_driver_id = :reserve_driver_id,
    constructor_id = :constructor_id,
    total_points = :total_points,
    budget_remaining = :budget_remaining,
    is_active = :is_active,
    updated_at = :updated_at
WHERE id = :id`

	sqlQuery, args, err := sqlx.Named(query, rosterArgs(roster))
	if err != nil {
		return fmt.Errorf("bind roster update: %w", err)
	}

	result, err := r.ext.ExecContext(ctx, r.ext.Rebind(sqlQuery), args...)
	if err != nil {
		return fmt.Errorf("update roster: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("roster update rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("roster %d does not exist", roster.ID)
	}

	return nil
}
