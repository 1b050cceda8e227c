package models

import (
	"time"

	"wintoday/roulette"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GameRound struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PlayerID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"player_id"`
	Player       Player         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Number       int            `gorm:"not null" json:"number"`
	Color        roulette.Color `gorm:"not null" json:"color"`
	BetCommitted bool           `gorm:"not null;default:false" json:"bet_committed"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
}

func (r *GameRound) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r GameRound) Outcome() roulette.Outcome {
	return roulette.Outcome{Number: r.Number, Color: r.Color}
}
