package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TrxInitialFunds    TransactionType = "InitialFunds"
	TrxBetWager        TransactionType = "BetWager"
	TrxBetPayout       TransactionType = "BetPayout"
	TrxManualSaveDelta TransactionType = "ManualSaveDelta"
)

// BalanceTransaction is one append-only ledger entry. Amount is signed and
// BalanceAfter is the player's funds right after applying it.
type BalanceTransaction struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Seq      int64      `gorm:"autoIncrement;index" json:"seq"`
	PlayerID uuid.UUID  `gorm:"type:uuid;not null;index" json:"player_id"`
	BetID    *uuid.UUID `gorm:"type:uuid;index" json:"bet_id,omitempty"`
	Bet      *Bet       `gorm:"foreignKey:BetID;constraint:OnDelete:CASCADE" json:"-"`

	Type         TransactionType `gorm:"size:32;not null" json:"type"`
	Amount       decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"balance_after"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

func (t *BalanceTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
