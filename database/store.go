package database

import (
	"context"

	"wintoday/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is what the game services need from persistence. Missing rows are
// reported as gorm.ErrRecordNotFound by every implementation.
type Store interface {
	FindPlayerByNormalizedName(ctx context.Context, key string) (*models.Player, error)
	FindPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayerIDs(ctx context.Context) ([]uuid.UUID, error)

	InsertRound(ctx context.Context, r *models.GameRound) error
	FindRoundForPlayer(ctx context.Context, roundID, playerID uuid.UUID) (*models.GameRound, error)

	// RecentBets returns bets with Round populated, most recent round first.
	RecentBets(ctx context.Context, playerID uuid.UUID, limit int) ([]models.Bet, error)
	// RecentLedger returns the newest limit entries, newest first.
	RecentLedger(ctx context.Context, playerID uuid.UUID, limit int) ([]models.BalanceTransaction, error)

	// Atomic runs fn in one all-or-nothing unit. Any error from fn, or a
	// cancelled ctx, discards every write fn made.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write scope handed out by Store.Atomic.
type Tx interface {
	// InsertPlayerIfAbsent creates p unless its normalized name is taken, in
	// which case the existing player is returned with created == false.
	InsertPlayerIfAbsent(ctx context.Context, p *models.Player) (existing *models.Player, created bool, err error)
	// LockPlayerFunds re-reads the authoritative balance and holds the player
	// exclusively until the unit ends.
	LockPlayerFunds(ctx context.Context, playerID uuid.UUID) (decimal.Decimal, error)
	UpdatePlayerFunds(ctx context.Context, playerID uuid.UUID, funds decimal.Decimal) error

	LockRoundForPlayer(ctx context.Context, roundID, playerID uuid.UUID) (*models.GameRound, error)
	// MarkRoundCommitted returns ErrRoundCommitted if the flag was already set.
	MarkRoundCommitted(ctx context.Context, roundID uuid.UUID) error
	InsertRound(ctx context.Context, r *models.GameRound) error

	InsertBet(ctx context.Context, b *models.Bet) error
	InsertLedgerEntry(ctx context.Context, e *models.BalanceTransaction) error
	// Ledger returns every entry of the player in creation order.
	Ledger(ctx context.Context, playerID uuid.UUID) ([]models.BalanceTransaction, error)
}
