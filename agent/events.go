package agent

import (
	"maps"
	"slices"

	"github.com/nstehr/vimy/vimy-patrol/ipc"
	"github.com/nstehr/vimy/vimy-patrol/model"
)

// EventKind identifies a lifecycle change derived from consecutive ticks.
type EventKind string

const (
	EventTargetSpawned EventKind = "target_spawned"
	EventTargetRemoved EventKind = "target_removed"
	EventSquadRemoved  EventKind = "squad_removed"
)

// Event is a lifecycle notification the host did not send explicitly.
type Event struct {
	Kind   EventKind
	Tick   uint64
	ID     model.ID
	Target model.TargetKind // set for spawns
}

// stateSnapshot captures the diffable fields from a tick.
type stateSnapshot struct {
	targets map[model.ID]model.TargetKind // valid targets only
	squads  map[model.ID]bool
}

func takeSnapshot(tick ipc.TickMessage) stateSnapshot {
	snap := stateSnapshot{
		targets: make(map[model.ID]model.TargetKind, len(tick.Targets)),
		squads:  make(map[model.ID]bool, len(tick.Squads)),
	}
	for _, t := range tick.Targets {
		if t.Valid {
			snap.targets[t.ID] = t.Kind
		}
	}
	for _, sq := range tick.Squads {
		snap.squads[sq.ID] = true
	}
	return snap
}

// detectEvents compares the tick against the previous snapshot. A nil prev
// counts as an empty world, so every target in the first diffed tick spawns.
// Spawns come out before removals so a target swapped for another within one
// tick does not look like the threat ending. Each group is in ascending ID
// order.
func detectEvents(tick ipc.TickMessage, prev *stateSnapshot) []Event {
	cur := takeSnapshot(tick)
	if prev == nil {
		prev = &stateSnapshot{}
	}

	var events []Event

	for _, id := range slices.Sorted(maps.Keys(cur.targets)) {
		if _, ok := prev.targets[id]; !ok {
			events = append(events, Event{
				Kind:   EventTargetSpawned,
				Tick:   tick.Tick,
				ID:     id,
				Target: cur.targets[id],
			})
		}
	}

	for _, id := range slices.Sorted(maps.Keys(prev.targets)) {
		if _, ok := cur.targets[id]; !ok {
			events = append(events, Event{Kind: EventTargetRemoved, Tick: tick.Tick, ID: id})
		}
	}

	for _, id := range slices.Sorted(maps.Keys(prev.squads)) {
		if !cur.squads[id] {
			events = append(events, Event{Kind: EventSquadRemoved, Tick: tick.Tick, ID: id})
		}
	}
	return events
}
