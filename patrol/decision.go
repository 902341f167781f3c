package patrol

import "github.com/nstehr/vimy/vimy-patrol/model"

// Action names a move the engine decided on.
type Action string

const (
	ActionEngage       Action = "engage"       // sent after a target
	ActionTransfer     Action = "transfer"     // pulled off an overloaded or lost target
	ActionReturn       Action = "return"       // nothing in reach, heading home mid-threat
	ActionRecall       Action = "recall"       // threat over, heading home for good
	ActionRedistribute Action = "redistribute" // forced reassignment after an arrival
)

// Decision is one move the engine issued, with enough context to replay
// why it was made.
type Decision struct {
	Tick   uint64         `json:"tick"`
	Squad  model.ID       `json:"squad"`
	Action Action         `json:"action"`
	Target model.ID       `json:"target,omitempty"`
	Kind   string         `json:"kind,omitempty"`
	Points int            `json:"points"`
	Dest   model.Position `json:"dest"`
	Home   model.Position `json:"home"`
}

// Recorder receives every decision. Implementations must not call back
// into the engine.
type Recorder interface {
	Record(d Decision) error
}
