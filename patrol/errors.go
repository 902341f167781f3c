package patrol

import "errors"

var (
	// ErrSquadGone is returned by World.Squad when a handle no longer
	// resolves to a live squad.
	ErrSquadGone = errors.New("squad gone")

	// ErrUnknownKind is returned when a target kind has no entry in the
	// kind table.
	ErrUnknownKind = errors.New("unknown target kind")
)
