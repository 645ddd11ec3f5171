package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
	qb "github.com/davidriba/f1-fantasy-league/internal/platform/querybuilder"
)

var transactionSelectColumns = []string{
	"id",
	"reference",
	"driver_id",
	"league_id",
	"seller_id",
	"buyer_id",
	"price",
	"transaction_type",
	"occurred_at",
}

// TransactionRepository appends to and reads the immutable trade log.
// Rows are never updated or deleted.
type TransactionRepository struct {
	ext dbtx
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{ext: db}
}

func (r *TransactionRepository) Append(ctx context.Context, tx market.Transaction) error {
	const query = `
INSERT INTO market_transactions (reference, driver_id, league_id, seller_id, buyer_id, price, transaction_type, occurred_at)
VALUES (:reference, :driver_id, :league_id, :seller_id, :buyer_id, :price, :transaction_type, :occurred_at)`

	args := map[string]any{
		"reference":        tx.Reference,
		"driver_id":        tx.DriverID,
		"league_id":        tx.LeagueID,
		"seller_id":        nullableArg(tx.SellerID),
		"buyer_id":         tx.BuyerID,
		"price":            tx.Price,
		"transaction_type": string(tx.Type),
		"occurred_at":      tx.OccurredAt,
	}

	sqlQuery, bound, err := sqlx.Named(query, args)
	if err != nil {
		return fmt.Errorf("bind transaction insert: %w", err)
	}

	if _, err := r.ext.ExecContext(ctx, r.ext.Rebind(sqlQuery), bound...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}

func (r *TransactionRepository) ListByLeague(ctx context.Context, leagueID int64, limit int) ([]market.Transaction, error) {
	return r.list(ctx, limit, qb.Eq("league_id", leagueID))
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID, leagueID int64, limit int) ([]market.Transaction, error) {
	return r.list(ctx, limit,
		qb.Eq("league_id", leagueID),
		qb.Expr("(buyer_id = ? OR seller_id = ?)", userID, userID),
	)
}

func (r *TransactionRepository) list(ctx context.Context, limit int, conditions ...qb.Condition) ([]market.Transaction, error) {
	query, args, err := qb.Select(transactionSelectColumns...).
		From("market_transactions").
		Where(conditions...).
		OrderBy("occurred_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build transaction list query: %w", err)
	}

	var rows []transactionTableModel
	if err := r.ext.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]market.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
