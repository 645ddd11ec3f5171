package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
	qb "github.com/davidriba/f1-fantasy-league/internal/platform/querybuilder"
)

// BuyoutRepository stores the append-only buyout clause history used to
// enforce the per-pair buyout cap within a season.
type BuyoutRepository struct {
	ext dbtx
}

func NewBuyoutRepository(db *sqlx.DB) *BuyoutRepository {
	return &BuyoutRepository{ext: db}
}

func (r *BuyoutRepository) Append(ctx context.Context, record market.BuyoutRecord) error {
	const query = `
INSERT INTO buyout_clause_history (league_id, buyer_id, victim_id, driver_id, buyout_price, season_year, occurred_at)
VALUES (:league_id, :buyer_id, :victim_id, :driver_id, :buyout_price, :season_year, :occurred_at)`

	args := map[string]any{
		"league_id":    record.LeagueID,
		"buyer_id":     record.BuyerID,
		"victim_id":    record.VictimID,
		"driver_id":    record.DriverID,
		"buyout_price": record.BuyoutPrice,
		"season_year":  record.SeasonYear,
		"occurred_at":  record.OccurredAt,
	}

	sqlQuery, bound, err := sqlx.Named(query, args)
	if err != nil {
		return fmt.Errorf("bind buyout insert: %w", err)
	}

	if _, err := r.ext.ExecContext(ctx, r.ext.Rebind(sqlQuery), bound...); err != nil {
		return fmt.Errorf("insert buyout record: %w", err)
	}

	return nil
}

func (r *BuyoutRepository) CountBetween(ctx context.Context, leagueID, buyerID, victimID int64, seasonYear int) (int, error) {
	query, args, err := qb.Select("COUNT(*)").
		From("buyout_clause_history").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("buyer_id", buyerID),
			qb.Eq("victim_id", victimID),
			qb.Eq("season_year", seasonYear),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build buyout count query: %w", err)
	}

	var count int
	if err := r.ext.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count buyouts: %w", err)
	}

	return count, nil
}
