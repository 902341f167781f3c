package patrol

import (
	"maps"
	"slices"

	"github.com/nstehr/vimy/vimy-patrol/model"
)

// Ledger records which target each squad currently holds points on.
// Every point charged to the registry has exactly one ledger entry behind it.
type Ledger struct {
	held map[model.ID]model.ID // squad -> target
}

func NewLedger() *Ledger {
	return &Ledger{held: make(map[model.ID]model.ID)}
}

func (l *Ledger) Hold(squad, target model.ID) { l.held[squad] = target }

func (l *Ledger) Held(squad model.ID) (model.ID, bool) {
	t, ok := l.held[squad]
	return t, ok
}

func (l *Ledger) Drop(squad model.ID) { delete(l.held, squad) }

// Holders returns the squads holding target, in ascending order.
func (l *Ledger) Holders(target model.ID) []model.ID {
	var out []model.ID
	for _, sq := range slices.Sorted(maps.Keys(l.held)) {
		if l.held[sq] == target {
			out = append(out, sq)
		}
	}
	return out
}

// DropTarget forgets every hold on target without touching the registry.
func (l *Ledger) DropTarget(target model.ID) {
	for sq, t := range l.held {
		if t == target {
			delete(l.held, sq)
		}
	}
}

func (l *Ledger) Len() int { return len(l.held) }

func (l *Ledger) Clear() { clear(l.held) }
