package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrTxDone        = errors.New("transaction already finished")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrMissingDSN    = errors.New("postgres dsn is required")
)
