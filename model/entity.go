package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ID is an opaque entity handle assigned by the host simulation. The sidecar
// never owns the entity behind it; a handle may go stale at any time.
type ID uint32

// NoEntity marks a destination that is a plain position rather than an entity.
const NoEntity ID = 0

// Position is a world-space point. Y is the vertical axis and is ignored by
// all planar comparisons.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SquaredPlanarDistance compares positions on the ground plane without a
// square root.
func SquaredPlanarDistance(a, b Position) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return dx*dx + dz*dz
}

// TargetKind classifies a hostile entity. Kind-specific behavior lives in
// lookup tables keyed by this value, never in type switches.
type TargetKind uint8

const (
	KindUnknown     TargetKind = iota
	KindSiege                  // siege monster (ogre)
	KindRaiderMain             // main raiding party
	KindRaiderThief            // thief raiders heading for stockpiles
)

var kindNames = map[TargetKind]string{
	KindSiege:       "siege",
	KindRaiderMain:  "raider_main",
	KindRaiderThief: "raider_thief",
}

// AllKinds lists every known kind in declaration order.
func AllKinds() []TargetKind {
	return []TargetKind{KindSiege, KindRaiderMain, KindRaiderThief}
}

func (k TargetKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseTargetKind accepts the wire names used by the host mod.
func ParseTargetKind(s string) (TargetKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown target kind %q", s)
}

func (k TargetKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *TargetKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("target kind: %w", err)
	}
	parsed, err := ParseTargetKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Destination is what a move order points at: either an entity handle or a
// plain position. Position is always filled so the host can path to it even
// when the entity has moved since the order was issued.
type Destination struct {
	Target   ID       `json:"target_id"`
	Position Position `json:"position"`
}

// IsTarget reports whether the destination names an entity.
func (d Destination) IsTarget() bool { return d.Target != NoEntity }

// Squad is the live view of a friendly army group, rebuilt from every host
// snapshot. Field names double as the vocabulary of the squad filter
// expression, so keep them stable.
type Squad struct {
	ID       ID          `json:"id"`
	Team     int         `json:"team"`
	Type     string      `json:"type"`
	Position Position    `json:"position"`
	Moving   bool        `json:"moving"`
	Idle     bool        `json:"idle"` // every unit is following its leader
	Dest     Destination `json:"dest"`
	Units    int         `json:"units"`
}

// Target is the live view of a hostile entity.
type Target struct {
	ID       ID         `json:"id"`
	Kind     TargetKind `json:"kind"`
	Position Position   `json:"position"`
	Valid    bool       `json:"valid"`
}
