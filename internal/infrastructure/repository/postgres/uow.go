package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
)

// dbtx is the query surface shared by *sqlx.DB and *sqlx.Tx, so repositories
// can run standalone or inside a unit of work.
type dbtx interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// UnitOfWork runs market operations inside one database transaction.
// Ownership reads performed within it take a row lock, which is what
// serializes two trades racing for the same driver.
type UnitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos market.Repositories) error) error {
	if fn == nil {
		return fmt.Errorf("transaction body is required")
	}

	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin market transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &txRepos{ext: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit market transaction: %w", err)
	}

	return nil
}

type txRepos struct {
	ext dbtx
}

func (r *txRepos) Ownerships() market.OwnershipRepository {
	return &OwnershipRepository{ext: r.ext, forUpdate: true}
}

func (r *txRepos) Rosters() market.RosterRepository {
	return &RosterRepository{ext: r.ext}
}

func (r *txRepos) Transactions() market.TransactionRepository {
	return &TransactionRepository{ext: r.ext}
}

func (r *txRepos) Buyouts() market.BuyoutRepository {
	return &BuyoutRepository{ext: r.ext}
}
