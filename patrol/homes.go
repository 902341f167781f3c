package patrol

import (
	"maps"
	"slices"

	"github.com/nstehr/vimy/vimy-patrol/model"
)

// HomeTracker remembers where each responding squad started so it can be
// sent back once the threat is over. Entries exist only while a threat is
// active.
type HomeTracker struct {
	homes map[model.ID]model.Position
}

func NewHomeTracker() *HomeTracker {
	return &HomeTracker{homes: make(map[model.ID]model.Position)}
}

// Record stores pos as the squad's home unless one is already recorded.
// Returns true when a new entry was created.
func (h *HomeTracker) Record(squad model.ID, pos model.Position) bool {
	if _, ok := h.homes[squad]; ok {
		return false
	}
	h.homes[squad] = pos
	return true
}

// Set overwrites the squad's home, used when the player repositions it.
func (h *HomeTracker) Set(squad model.ID, pos model.Position) {
	h.homes[squad] = pos
}

func (h *HomeTracker) Home(squad model.ID) (model.Position, bool) {
	p, ok := h.homes[squad]
	return p, ok
}

func (h *HomeTracker) Forget(squad model.ID) {
	delete(h.homes, squad)
}

// Squads returns every squad with a home, in ascending order.
func (h *HomeTracker) Squads() []model.ID {
	return slices.Sorted(maps.Keys(h.homes))
}

func (h *HomeTracker) Len() int { return len(h.homes) }

func (h *HomeTracker) Clear() { clear(h.homes) }
