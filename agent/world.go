package agent

import (
	"fmt"

	"github.com/nstehr/vimy/vimy-patrol/ipc"
	"github.com/nstehr/vimy/vimy-patrol/model"
	"github.com/nstehr/vimy/vimy-patrol/patrol"
)

// Sender delivers messages to the mod. *ipc.Connection satisfies it.
type Sender interface {
	Send(msgType string, data any) error
}

// worldView answers the engine's queries from the latest tick snapshot plus
// whatever notifications arrived since.
type worldView struct {
	sender  Sender
	grid    *model.LandmassGrid
	order   []model.ID
	squads  map[model.ID]model.Squad
	targets map[model.ID]model.Target
}

func newWorldView(sender Sender) *worldView {
	return &worldView{
		sender:  sender,
		squads:  make(map[model.ID]model.Squad),
		targets: make(map[model.ID]model.Target),
	}
}

// update replaces the snapshot. The host's squad order is kept as is.
func (w *worldView) update(tick ipc.TickMessage) {
	clear(w.squads)
	w.order = w.order[:0]
	for _, sq := range tick.Squads {
		if _, dup := w.squads[sq.ID]; !dup {
			w.order = append(w.order, sq.ID)
		}
		w.squads[sq.ID] = sq
	}
	clear(w.targets)
	for _, t := range tick.Targets {
		w.targets[t.ID] = t
	}
}

func (w *worldView) putTarget(t model.Target) { w.targets[t.ID] = t }

func (w *worldView) removeTarget(id model.ID) { delete(w.targets, id) }

func (w *worldView) removeSquad(id model.ID) {
	if _, ok := w.squads[id]; !ok {
		return
	}
	delete(w.squads, id)
	for i, sid := range w.order {
		if sid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// setDest mirrors an order into the snapshot so later reads in the same
// tick see the squad as moving.
func (w *worldView) setDest(id model.ID, dest model.Destination) {
	sq, ok := w.squads[id]
	if !ok {
		return
	}
	sq.Dest = dest
	sq.Moving = true
	w.squads[id] = sq
}

func (w *worldView) reset() {
	clear(w.squads)
	clear(w.targets)
	w.order = w.order[:0]
}

func (w *worldView) LandmassOf(pos model.Position) int {
	return w.grid.LandmassOf(pos)
}

func (w *worldView) SquaredPlanarDistance(a, b model.Position) float64 {
	return model.SquaredPlanarDistance(a, b)
}

func (w *worldView) TargetPosition(id model.ID) (model.Position, bool) {
	t, ok := w.targets[id]
	if !ok || !t.Valid {
		return model.Position{}, false
	}
	return t.Position, true
}

func (w *worldView) Squads() []model.ID {
	out := make([]model.ID, len(w.order))
	copy(out, w.order)
	return out
}

func (w *worldView) Squad(id model.ID) (model.Squad, error) {
	sq, ok := w.squads[id]
	if !ok {
		return model.Squad{}, fmt.Errorf("squad %d: %w", id, patrol.ErrSquadGone)
	}
	return sq, nil
}

func (w *worldView) IssueMove(squad model.ID, dest model.Destination) error {
	if err := w.sender.Send(ipc.TypeMove, ipc.NewMoveCommand(squad, dest)); err != nil {
		return fmt.Errorf("send move: %w", err)
	}
	w.setDest(squad, dest)
	return nil
}
