package config

import (
	"errors"
)

// ErrInvalidConfig wraps every validation failure. The narrower kinds below
// are wrapped alongside it so callers can tell store and schedule problems
// apart.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")

	ErrUnknownStoreDriver = errors.New("unknown store driver")
	ErrMissingDSN         = errors.New("postgres dsn required")
	ErrInvalidSchedule    = errors.New("invalid pick schedule")
)
