package ipc

import "github.com/nstehr/vimy/vimy-patrol/model"

// These constants must stay in sync with the C# MessageType enum in the mod.
const (
	TypeHello         = "hello"
	TypeAck           = "ack"
	TypeTick          = "tick"
	TypeTargetSpawned = "target_spawned"
	TypeTargetRemoved = "target_removed"
	TypeTargetArrived = "target_arrived"
	TypeSquadRemoved  = "squad_removed"
	TypeMoveIssued    = "move_issued"
	TypeConfig        = "config"
	TypeReset         = "reset"
)

type HelloMessage struct {
	Player   string        `json:"player"`
	Landmass *LandmassData `json:"landmass,omitempty"`
}

// LandmassData carries the reachability partition from the mod.
// Optional; without it the whole map counts as one landmass.
type LandmassData struct {
	Cols  int   `json:"cols"`
	Rows  int   `json:"rows"`
	CellW int   `json:"cellW"`
	CellH int   `json:"cellH"`
	Grid  []int `json:"grid"`
}

type AckMessage struct {
	Status string `json:"status"`
}

// TickMessage is sent once per simulation step. Squads are listed in the
// host's own enumeration order, which the engine preserves.
type TickMessage struct {
	Tick      uint64         `json:"tick"`
	ElapsedMs int            `json:"elapsed_ms"`
	Squads    []model.Squad  `json:"squads"`
	Targets   []model.Target `json:"targets"`
	// Diff asks the sidecar to derive spawn and despawn events from the
	// target and squad lists instead of waiting for explicit notifications.
	Diff bool `json:"diff,omitempty"`
}

type TargetSpawnedMessage struct {
	ID       model.ID         `json:"id"`
	Kind     model.TargetKind `json:"kind"`
	Position model.Position   `json:"position"`
}

// EntityMessage names a single entity for removal and arrival notices.
type EntityMessage struct {
	ID model.ID `json:"id"`
}

// MoveIssuedMessage reports an order given to a squad by anyone, the player
// included.
type MoveIssuedMessage struct {
	Squad    model.ID `json:"squad"`
	TargetID model.ID `json:"target_id"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Z        float64  `json:"z"`
}

func (m MoveIssuedMessage) Destination() model.Destination {
	return model.Destination{
		Target:   m.TargetID,
		Position: model.Position{X: m.X, Y: m.Y, Z: m.Z},
	}
}

// ConfigMessage is a partial settings update from the mod's options menu.
// Absent fields keep their current value.
type ConfigMessage struct {
	Enabled             *bool    `json:"enabled,omitempty"`
	PatrolRadius        *float64 `json:"patrol_radius,omitempty"`
	SoftenedSearch      *bool    `json:"softened_search,omitempty"`
	RebalanceIntervalMs *int     `json:"rebalance_interval_ms,omitempty"`
	Siege               *bool    `json:"siege,omitempty"`
	RaiderMain          *bool    `json:"raider_main,omitempty"`
	RaiderThief         *bool    `json:"raider_thief,omitempty"`
}
