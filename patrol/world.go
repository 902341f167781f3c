package patrol

import "github.com/nstehr/vimy/vimy-patrol/model"

// Locality answers reachability and distance questions. The engine never
// computes landmasses itself.
type Locality interface {
	LandmassOf(pos model.Position) int
	SquaredPlanarDistance(a, b model.Position) float64
}

// World is the engine's window into the host simulation. Every read is live
// and any handle may have gone stale since the last call.
type World interface {
	Locality

	// TargetPosition returns the target's position, or false if the handle
	// no longer refers to a valid entity.
	TargetPosition(id model.ID) (model.Position, bool)

	// Squads lists candidate squads in a stable order.
	Squads() []model.ID

	// Squad reads one squad. A stale handle yields an error wrapping
	// ErrSquadGone.
	Squad(id model.ID) (model.Squad, error)

	// IssueMove orders the squad to the destination. Fire-and-forget.
	IssueMove(squad model.ID, dest model.Destination) error
}
