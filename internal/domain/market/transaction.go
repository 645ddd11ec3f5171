package market

import (
	"fmt"
	"time"
)

// TransactionType labels how an ownership change came about.
type TransactionType string

const (
	TransactionBuyFromMarket       TransactionType = "buy_from_market"
	TransactionBuyFromUser         TransactionType = "buy_from_user"
	TransactionSellToMarket        TransactionType = "sell_to_market"
	TransactionBuyoutClause        TransactionType = "buyout_clause"
	TransactionEmergencyAssignment TransactionType = "emergency_assignment"
)

var allTransactionTypes = map[TransactionType]struct{}{
	TransactionBuyFromMarket:       {},
	TransactionBuyFromUser:         {},
	TransactionSellToMarket:        {},
	TransactionBuyoutClause:        {},
	TransactionEmergencyAssignment: {},
}

// Transaction is one append-only audit record of an ownership change.
// Rows are never mutated or deleted.
type Transaction struct {
	ID         int64
	Reference  string
	DriverID   int64
	LeagueID   int64
	SellerID   *int64
	BuyerID    int64
	Price      int64
	Type       TransactionType
	OccurredAt time.Time
}

func (t Transaction) Validate() error {
	if t.DriverID <= 0 {
		return fmt.Errorf("driver id is required")
	}
	if t.LeagueID <= 0 {
		return fmt.Errorf("league id is required")
	}
	if t.BuyerID <= 0 {
		return fmt.Errorf("buyer id is required")
	}
	if t.Price < 0 {
		return fmt.Errorf("transaction price cannot be negative")
	}
	if _, ok := allTransactionTypes[t.Type]; !ok {
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}

	return nil
}
