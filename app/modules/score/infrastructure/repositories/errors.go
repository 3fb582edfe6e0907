package scoredb

import "errors"

var (
	// ErrUnknownPool is returned for a pool outside Pools.
	ErrUnknownPool = errors.New("unknown ranking pool")
	// ErrNotRanked is returned when an entity has no row in the requested
	// ranking, either because its score is zero or it is banned.
	ErrNotRanked = errors.New("entity is not ranked")
)
