package catalogue

import "errors"

var (
	ErrDuplicateStop    = errors.New("stop already registered")
	ErrDuplicateBus     = errors.New("bus already registered")
	ErrUnknownStop      = errors.New("unknown stop")
	ErrNegativeDistance = errors.New("distance must be non-negative")
	ErrEmptyRoute       = errors.New("bus route has no stops")
	ErrFrozen           = errors.New("catalogue is frozen")
)
