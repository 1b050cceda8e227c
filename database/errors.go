package database

import "errors"

var ErrRoundCommitted = errors.New("round already committed")
