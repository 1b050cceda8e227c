package services

import (
	"context"
	"fmt"
	"time"

	"wintoday/database"
	"wintoday/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledger tracks one player's running balance inside an atomic unit. Every
// change goes through post, which appends the entry with its balance
// snapshot; close persists the final balance once.
type ledger struct {
	tx       database.Tx
	playerID uuid.UUID
	balance  decimal.Decimal
	now      func() time.Time
}

// openLedger takes the exclusive lock on the player's funds and starts the
// running balance from the value read under that lock.
func openLedger(ctx context.Context, tx database.Tx, playerID uuid.UUID, now func() time.Time) (*ledger, error) {
	funds, err := tx.LockPlayerFunds(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return &ledger{tx: tx, playerID: playerID, balance: funds, now: now}, nil
}

func (l *ledger) covers(amount decimal.Decimal) bool {
	return l.balance.GreaterThanOrEqual(amount)
}

func (l *ledger) debit(ctx context.Context, typ models.TransactionType, amount decimal.Decimal, betID *uuid.UUID) error {
	if !l.covers(amount) {
		return ErrInsufficientFunds
	}
	return l.post(ctx, typ, amount.Neg(), betID)
}

func (l *ledger) credit(ctx context.Context, typ models.TransactionType, amount decimal.Decimal, betID *uuid.UUID) error {
	return l.post(ctx, typ, amount, betID)
}

func (l *ledger) post(ctx context.Context, typ models.TransactionType, amount decimal.Decimal, betID *uuid.UUID) error {
	next := l.balance.Add(amount)
	entry := &models.BalanceTransaction{
		PlayerID:     l.playerID,
		BetID:        betID,
		Type:         typ,
		Amount:       amount,
		BalanceAfter: next,
		CreatedAt:    l.now(),
	}
	if err := l.tx.InsertLedgerEntry(ctx, entry); err != nil {
		return err
	}
	l.balance = next
	return nil
}

func (l *ledger) close(ctx context.Context) error {
	return l.tx.UpdatePlayerFunds(ctx, l.playerID, l.balance)
}

// LedgerMismatchError reports the first entry whose snapshot disagrees with
// the replayed running sum. Seq is zero when every entry agrees but the
// final sum differs from the stored funds.
type LedgerMismatchError struct {
	Seq      int64
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *LedgerMismatchError) Error() string {
	if e.Seq == 0 {
		return fmt.Sprintf("ledger sums to %s but funds are %s", e.Expected, e.Actual)
	}
	return fmt.Sprintf("ledger entry %d: running balance %s, recorded %s", e.Seq, e.Expected, e.Actual)
}

// VerifyLedger replays entries in order and checks every balance snapshot
// and the final sum against funds.
func VerifyLedger(entries []models.BalanceTransaction, funds decimal.Decimal) error {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
		if !sum.Equal(e.BalanceAfter) {
			return &LedgerMismatchError{Seq: e.Seq, Expected: sum, Actual: e.BalanceAfter}
		}
	}
	if !sum.Equal(funds) {
		return &LedgerMismatchError{Expected: sum, Actual: funds}
	}
	return nil
}
