package patrol

import (
	"fmt"

	"github.com/nstehr/vimy/vimy-patrol/model"
)

// KindRules holds the per-kind constants for point accounting.
// Points on a target always stay on StartPoints + n*Increment.
type KindRules struct {
	StartPoints   int // value a freshly registered target starts at
	Increment     int // added per assigned squad, removed per release
	HoldThreshold int // above this a holding squad may be moved elsewhere
}

// Thieves start one step behind and cost double so fresh main raiders and
// siege monsters are preferred while thieves still get covered.
var kindTable = map[model.TargetKind]KindRules{
	model.KindSiege:       {StartPoints: 0, Increment: 1, HoldThreshold: 3},
	model.KindRaiderMain:  {StartPoints: 0, Increment: 1, HoldThreshold: 2},
	model.KindRaiderThief: {StartPoints: 1, Increment: 2, HoldThreshold: 3},
}

// RulesFor returns the point rules for a kind.
func RulesFor(k model.TargetKind) (KindRules, error) {
	r, ok := kindTable[k]
	if !ok {
		return KindRules{}, fmt.Errorf("%w: %v", ErrUnknownKind, k)
	}
	return r, nil
}
