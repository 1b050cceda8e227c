package models

import (
	"time"

	"wintoday/roulette"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BetStatus string

const (
	BetPending BetStatus = "Pending"
	BetWon     BetStatus = "Won"
	BetLost    BetStatus = "Lost"
)

type Bet struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlayerID uuid.UUID `gorm:"type:uuid;not null;index" json:"player_id"`
	RoundID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"round_id"`
	Round    GameRound `gorm:"foreignKey:RoundID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Type   roulette.BetType `gorm:"not null" json:"bet_type"`
	Color  *roulette.Color  `json:"color,omitempty"`
	IsEven *bool            `json:"is_even,omitempty"`
	Number *int             `json:"number,omitempty"`

	Wager decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"wager"`
	// Profit excludes the returned wager; null until the bet is resolved.
	Profit   decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"profit"`
	Status   BetStatus           `gorm:"size:16;not null;default:Pending" json:"status"`
	Criteria datatypes.JSON      `gorm:"type:jsonb" json:"criteria"`

	CreatedAt time.Time `json:"created_at"`
}

func (b *Bet) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
