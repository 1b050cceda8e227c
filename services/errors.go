package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Business failures. Handlers translate these into client-visible errors;
// anything else is an operation failure.
var (
	ErrUnauthorized      = errors.New("player not registered")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrConflict          = errors.New("round already committed")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// invalidBet keeps the evaluator error reachable through errors.Is.
func invalidBet(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
