// Package roulette holds the wheel, the bet variants and the payout rules.
// Nothing in here knows about players, funds or storage.
package roulette

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	MinNumber = 0
	MaxNumber = 36
)

var (
	ErrInvalidBet         = errors.New("invalid bet")
	ErrUnsupportedBetType = errors.New("unsupported bet type")
	ErrInvalidColor       = errors.New("invalid color")
)

type Color int

const (
	Red   Color = 1
	Black Color = 2
)

func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Black:
		return "Black"
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

func (c Color) Valid() bool { return c == Red || c == Black }

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts "red" or "black" in any case, surrounding spaces ignored.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return Red, nil
	case "black":
		return Black, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

type BetType int

const (
	BetColor               BetType = 1
	BetColorParity         BetType = 2
	BetExactNumberAndColor BetType = 3
)

func (t BetType) String() string {
	switch t {
	case BetColor:
		return "Color"
	case BetColorParity:
		return "ColorParity"
	case BetExactNumberAndColor:
		return "ExactNumberAndColor"
	}
	return fmt.Sprintf("BetType(%d)", int(t))
}

func (t BetType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// ParseBetType maps the request tag onto a variant.
func ParseBetType(tag string) (BetType, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "color":
		return BetColor, nil
	case "colorparity", "color_parity":
		return BetColorParity, nil
	case "exact", "exactnumberandcolor", "exact_number_and_color":
		return BetExactNumberAndColor, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedBetType, tag)
}

// Outcome is a single spin of the wheel. Zero gets a color like any other
// number.
type Outcome struct {
	Number int   `json:"number"`
	Color  Color `json:"color"`
}

func (o Outcome) Validate() error {
	if o.Number < MinNumber || o.Number > MaxNumber {
		return fmt.Errorf("%w: number result %d out of range", ErrInvalidBet, o.Number)
	}
	if !o.Color.Valid() {
		return fmt.Errorf("%w: color result", ErrInvalidColor)
	}
	return nil
}

func (o Outcome) Even() bool { return o.Number%2 == 0 }
