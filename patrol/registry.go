package patrol

import (
	"maps"
	"slices"

	"github.com/nstehr/vimy/vimy-patrol/model"
)

type registryEntry struct {
	kind   model.TargetKind
	rules  KindRules
	points int
}

// Registry tracks every active hostile target and how many squads are
// assigned to it, measured in points. A non-empty registry is the single
// signal that a threat is underway.
type Registry struct {
	entries map[model.ID]*registryEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[model.ID]*registryEntry)}
}

// Register inserts the target at its kind's start value. Registering a
// known target is a no-op, even with a different kind.
func (r *Registry) Register(id model.ID, kind model.TargetKind) error {
	if _, ok := r.entries[id]; ok {
		return nil
	}
	rules, err := RulesFor(kind)
	if err != nil {
		return err
	}
	r.entries[id] = &registryEntry{kind: kind, rules: rules, points: rules.StartPoints}
	return nil
}

// Unregister removes the target if present.
func (r *Registry) Unregister(id model.ID) {
	delete(r.entries, id)
}

// AdjustPoints adds delta to the target's points. Absent targets are
// ignored. Points never drop below the kind's start value.
func (r *Registry) AdjustPoints(id model.ID, delta int) {
	e, ok := r.entries[id]
	if !ok {
		return
	}
	e.points += delta
	if e.points < e.rules.StartPoints {
		e.points = e.rules.StartPoints
	}
}

// Acquire charges one assignment against the target.
func (r *Registry) Acquire(id model.ID) {
	if e, ok := r.entries[id]; ok {
		r.AdjustPoints(id, e.rules.Increment)
	}
}

// Release refunds one assignment.
func (r *Registry) Release(id model.ID) {
	if e, ok := r.entries[id]; ok {
		r.AdjustPoints(id, -e.rules.Increment)
	}
}

// IsActive reports whether any target is registered.
func (r *Registry) IsActive() bool { return len(r.entries) > 0 }

func (r *Registry) Has(id model.ID) bool {
	_, ok := r.entries[id]
	return ok
}

// Points returns the target's current load and whether it is registered.
func (r *Registry) Points(id model.ID) (int, bool) {
	e, ok := r.entries[id]
	if !ok {
		return 0, false
	}
	return e.points, true
}

// Kind returns the kind the target was registered with.
func (r *Registry) Kind(id model.ID) (model.TargetKind, bool) {
	e, ok := r.entries[id]
	if !ok {
		return model.KindUnknown, false
	}
	return e.kind, true
}

func (r *Registry) rules(id model.ID) (KindRules, bool) {
	e, ok := r.entries[id]
	if !ok {
		return KindRules{}, false
	}
	return e.rules, true
}

func (r *Registry) Len() int { return len(r.entries) }

// Targets returns registered handles in ascending order so every pass
// walks them the same way.
func (r *Registry) Targets() []model.ID {
	return slices.Sorted(maps.Keys(r.entries))
}

// ResetLoad puts every target back at its start value without forgetting it.
func (r *Registry) ResetLoad() {
	r.ResetLoadWhere(func(model.ID) bool { return true })
}

// ResetLoadWhere resets the targets accepted by match and returns them in
// ascending order.
func (r *Registry) ResetLoadWhere(match func(model.ID) bool) []model.ID {
	var reset []model.ID
	for _, id := range r.Targets() {
		if !match(id) {
			continue
		}
		e := r.entries[id]
		e.points = e.rules.StartPoints
		reset = append(reset, id)
	}
	return reset
}

func (r *Registry) Clear() {
	clear(r.entries)
}
