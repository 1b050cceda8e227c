package roulette

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Criteria is one arm of the bet variant union. Each implementation carries
// exactly the selectors its variant needs.
type Criteria interface {
	Type() BetType
	Wins(o Outcome) bool
	Profit(wager decimal.Decimal) decimal.Decimal
}

type ColorBet struct {
	Color Color `json:"color"`
}

func (ColorBet) Type() BetType { return BetColor }

func (b ColorBet) Wins(o Outcome) bool { return o.Color == b.Color }

func (ColorBet) Profit(wager decimal.Decimal) decimal.Decimal {
	return wager.Div(two).Round(2)
}

type ColorParityBet struct {
	Color  Color `json:"color"`
	IsEven bool  `json:"isEven"`
}

func (ColorParityBet) Type() BetType { return BetColorParity }

func (b ColorParityBet) Wins(o Outcome) bool {
	return o.Color == b.Color && o.Even() == b.IsEven
}

func (ColorParityBet) Profit(wager decimal.Decimal) decimal.Decimal { return wager }

type ExactBet struct {
	Number int   `json:"number"`
	Color  Color `json:"color"`
}

func (ExactBet) Type() BetType { return BetExactNumberAndColor }

func (b ExactBet) Wins(o Outcome) bool {
	return o.Number == b.Number && o.Color == b.Color
}

func (ExactBet) Profit(wager decimal.Decimal) decimal.Decimal { return wager.Mul(three) }

var (
	two   = decimal.NewFromInt(2)
	three = decimal.NewFromInt(3)
)

// Selectors is the loosely typed shape a bet arrives in from a client.
type Selectors struct {
	Color  *string
	IsEven *bool
	Number *int
}

// ParseCriteria validates the selectors required by betType and returns the
// matching Criteria arm.
func ParseCriteria(betType string, sel Selectors) (Criteria, error) {
	t, err := ParseBetType(betType)
	if err != nil {
		return nil, err
	}

	if sel.Color == nil || *sel.Color == "" {
		return nil, fmt.Errorf("%w: color required", ErrInvalidBet)
	}
	color, err := ParseColor(*sel.Color)
	if err != nil {
		return nil, err
	}

	switch t {
	case BetColor:
		return ColorBet{Color: color}, nil
	case BetColorParity:
		if sel.IsEven == nil {
			return nil, fmt.Errorf("%w: isEven required", ErrInvalidBet)
		}
		return ColorParityBet{Color: color, IsEven: *sel.IsEven}, nil
	case BetExactNumberAndColor:
		if sel.Number == nil {
			return nil, fmt.Errorf("%w: number required", ErrInvalidBet)
		}
		n := *sel.Number
		if n < MinNumber || n > MaxNumber {
			return nil, fmt.Errorf("%w: number %d out of range", ErrInvalidBet, n)
		}
		return ExactBet{Number: n, Color: color}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedBetType, betType)
}
