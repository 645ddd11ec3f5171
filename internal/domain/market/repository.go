package market

import (
	"context"
	"errors"
)

// ErrStaleOwnership is returned by persistence layers when an ownership
// write carries a version that no longer matches the stored row. The losing
// side of a racing trade observes it.
var ErrStaleOwnership = errors.New("ownership row changed concurrently")

// OwnershipRepository describes ownership ledger persistence.
// Implementations scoped to a unit of work must make Get an exclusive read
// (row lock) so that the read-validate-write cycle of a trade serializes
// per (driver, league).
type OwnershipRepository interface {
	Get(ctx context.Context, driverID, leagueID int64) (Ownership, bool, error)
	ListAll(ctx context.Context, leagueID int64) ([]Ownership, error)
	ListFree(ctx context.Context, leagueID int64) ([]Ownership, error)
	ListForSale(ctx context.Context, leagueID int64) ([]Ownership, error)
	ListOwnedBy(ctx context.Context, userID, leagueID int64) ([]Ownership, error)
	Create(ctx context.Context, ownership Ownership) error
	// Update persists the row, bumping Version; ErrStaleOwnership when the
	// stored version differs from ownership.Version.
	Update(ctx context.Context, ownership Ownership) error
}

// RosterRepository describes team roster persistence.
type RosterRepository interface {
	GetActive(ctx context.Context, userID, leagueID int64) (Roster, bool, error)
	Create(ctx context.Context, roster Roster) (int64, error)
	Update(ctx context.Context, roster Roster) error
}

// TransactionRepository appends to and reads the immutable trade log.
type TransactionRepository interface {
	Append(ctx context.Context, tx Transaction) error
	ListByLeague(ctx context.Context, leagueID int64, limit int) ([]Transaction, error)
	ListByUser(ctx context.Context, userID, leagueID int64, limit int) ([]Transaction, error)
}

// BuyoutRepository appends to and counts the buyout clause history.
type BuyoutRepository interface {
	Append(ctx context.Context, record BuyoutRecord) error
	CountBetween(ctx context.Context, leagueID, buyerID, victimID int64, seasonYear int) (int, error)
}

// Repositories is the persistence view handed to a unit of work body.
type Repositories interface {
	Ownerships() OwnershipRepository
	Rosters() RosterRepository
	Transactions() TransactionRepository
	Buyouts() BuyoutRepository
}

// UnitOfWork runs fn atomically: every read taken through repos is
// consistent and every write commits together or not at all. Returning an
// error from fn aborts with zero persisted side effects.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
