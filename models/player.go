package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Player struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	NormalizedName string          `gorm:"size:100;not null;uniqueIndex" json:"-"`
	Funds          decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"funds"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Rounds       []GameRound          `gorm:"foreignKey:PlayerID" json:"-"`
	Transactions []BalanceTransaction `gorm:"foreignKey:PlayerID" json:"-"`
}

func (p *Player) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NormalizeName is the case-insensitive lookup key for a display name.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
