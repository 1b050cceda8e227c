package services

import (
	"time"

	"wintoday/models"
	"wintoday/roulette"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PlayerBalance struct {
	Name  string          `json:"name"`
	Funds decimal.Decimal `json:"funds"`
}

type SpinResult struct {
	RoundID   uuid.UUID      `json:"roundId"`
	Number    int            `json:"number"`
	Color     roulette.Color `json:"color"`
	CreatedAt time.Time      `json:"createdAtUtc"`
}

type CommitBetRequest struct {
	RoundID    uuid.UUID       `json:"roundId"`
	PlayerName string          `json:"playerName"`
	Wager      decimal.Decimal `json:"wager"`
	BetType    string          `json:"betType"`
	Color      *string         `json:"color"`
	IsEven     *bool           `json:"isEven"`
	Number     *int            `json:"number"`
}

func (r CommitBetRequest) selectors() roulette.Selectors {
	return roulette.Selectors{Color: r.Color, IsEven: r.IsEven, Number: r.Number}
}

type BetOutcome struct {
	RoundID    uuid.UUID         `json:"roundId"`
	BetID      uuid.UUID         `json:"betId"`
	Number     int               `json:"number"`
	Color      roulette.Color    `json:"color"`
	Wager      decimal.Decimal   `json:"wager"`
	Profit     decimal.Decimal   `json:"profit"`
	NewBalance decimal.Decimal   `json:"newBalance"`
	Won        bool              `json:"won"`
	BetType    roulette.BetType  `json:"betType"`
	Criteria   roulette.Criteria `json:"criteria"`
}

type BetHistoryItem struct {
	RoundID        uuid.UUID        `json:"roundId"`
	BetID          uuid.UUID        `json:"betId"`
	Number         int              `json:"number"`
	Color          roulette.Color   `json:"color"`
	Wager          decimal.Decimal  `json:"wager"`
	Profit         decimal.Decimal  `json:"profit"`
	Won            bool             `json:"won"`
	Status         models.BetStatus `json:"status"`
	BetType        roulette.BetType `json:"betType"`
	Criteria       datatypes.JSON   `json:"criteria"`
	RoundCreatedAt time.Time        `json:"roundCreatedAtUtc"`
}

func newBetHistoryItem(b models.Bet) BetHistoryItem {
	return BetHistoryItem{
		RoundID:        b.RoundID,
		BetID:          b.ID,
		Number:         b.Round.Number,
		Color:          b.Round.Color,
		Wager:          b.Wager,
		Profit:         b.Profit.Decimal,
		Won:            b.Status == models.BetWon,
		Status:         b.Status,
		BetType:        b.Type,
		Criteria:       b.Criteria,
		RoundCreatedAt: b.Round.CreatedAt.UTC(),
	}
}

// SessionPlay is one bet a client played offline, with the outcome it saw.
type SessionPlay struct {
	Wager        decimal.Decimal `json:"wager"`
	BetType      string          `json:"betType"`
	Color        *string         `json:"color"`
	IsEven       *bool           `json:"isEven"`
	Number       *int            `json:"number"`
	NumberResult int             `json:"numberResult"`
	ColorResult  string          `json:"colorResult"`
	PlayedAt     *time.Time      `json:"playedAtUtc"`
}

func (p SessionPlay) selectors() roulette.Selectors {
	return roulette.Selectors{Color: p.Color, IsEven: p.IsEven, Number: p.Number}
}

type SaveSessionRequest struct {
	PlayerName string        `json:"playerName"`
	Bets       []SessionPlay `json:"bets"`
}

type SessionSaveResult struct {
	StartingFunds decimal.Decimal `json:"startingFunds"`
	EndingFunds   decimal.Decimal `json:"endingFunds"`
	Outcomes      []BetOutcome    `json:"outcomes"`
}

type LedgerEntry struct {
	ID           uuid.UUID              `json:"id"`
	BetID        *uuid.UUID             `json:"betId,omitempty"`
	Type         models.TransactionType `json:"type"`
	Amount       decimal.Decimal        `json:"amount"`
	BalanceAfter decimal.Decimal        `json:"balanceAfter"`
	CreatedAt    time.Time              `json:"createdAtUtc"`
}

func newLedgerEntry(e models.BalanceTransaction) LedgerEntry {
	return LedgerEntry{
		ID:           e.ID,
		BetID:        e.BetID,
		Type:         e.Type,
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		CreatedAt:    e.CreatedAt.UTC(),
	}
}
