package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrInvalidSort = errors.New("invalid sort")
)
