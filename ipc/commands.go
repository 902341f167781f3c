package ipc

import "github.com/nstehr/vimy/vimy-patrol/model"

// Command type constants. These must stay in sync with the C# CommandExecutor.
const (
	TypeMove = "move"
)

// MoveCommand orders a squad to an entity (TargetID set) or a plain
// position (TargetID zero). Coordinates are always filled.
type MoveCommand struct {
	Squad    model.ID `json:"squad"`
	TargetID model.ID `json:"target_id"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Z        float64  `json:"z"`
}

func NewMoveCommand(squad model.ID, dest model.Destination) MoveCommand {
	return MoveCommand{
		Squad:    squad,
		TargetID: dest.Target,
		X:        dest.Position.X,
		Y:        dest.Position.Y,
		Z:        dest.Position.Z,
	}
}
