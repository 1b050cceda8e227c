package roulette

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Result struct {
	Type     BetType
	Criteria Criteria
	Won      bool
	// Profit is what gets added on top of the returned wager. Zero on a loss.
	Profit decimal.Decimal
}

// Evaluate settles wager placed with c against the spin o.
func Evaluate(o Outcome, c Criteria, wager decimal.Decimal) (Result, error) {
	if c == nil {
		return Result{}, fmt.Errorf("%w: criteria required", ErrInvalidBet)
	}
	if err := o.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{Type: c.Type(), Criteria: c, Profit: decimal.Zero}
	if c.Wins(o) {
		res.Won = true
		res.Profit = c.Profit(wager)
	}
	return res, nil
}
