package patrol

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/vimy/vimy-patrol/model"
)

// homeToleranceSq is how close (squared, planar) a squad must be to its home
// to count as being there.
const homeToleranceSq = 0.25

// State is a squad's place in the patrol cycle.
type State int

const (
	Unassigned State = iota // no home recorded
	Engaged                 // home recorded, holding a target
	Returning               // home recorded, nothing to pursue
)

func (s State) String() string {
	switch s {
	case Unassigned:
		return "unassigned"
	case Engaged:
		return "engaged"
	case Returning:
		return "returning"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// State derives the squad's patrol state from the home tracker and ledger.
func (e *Engine) State(squad model.ID) State {
	if _, ok := e.homes.Home(squad); !ok {
		return Unassigned
	}
	if _, ok := e.ledger.Held(squad); ok {
		return Engaged
	}
	return Returning
}

// isIdle reports a halted squad whose units have regrouped and which is not
// parked on a registered target. Units still fighting keep the squad busy.
func (e *Engine) isIdle(sq model.Squad) bool {
	if sq.Moving || !sq.Idle {
		return false
	}
	return !(sq.Dest.IsTarget() && e.registry.Has(sq.Dest.Target))
}

// evaluate runs the patrol machine for one squad. Outside a rebalance pass
// only idle squads are touched.
func (e *Engine) evaluate(id model.ID, rebalance bool) (bool, error) {
	sq, err := e.world.Squad(id)
	if err != nil {
		return false, fmt.Errorf("read squad %d: %w", id, err)
	}
	ok, err := e.eligible(sq)
	if err != nil {
		return false, fmt.Errorf("squad %d: %w", id, err)
	}
	if !ok {
		return false, nil
	}

	if rebalance {
		if held, ok := e.ledger.Held(sq.ID); ok {
			return e.rebalance(sq, held)
		}
	}
	_, hasHome := e.homes.Home(sq.ID)
	if !e.isIdle(sq) && !(rebalance && hasHome) {
		return false, nil
	}
	return e.patrol(sq, ActionEngage)
}

// patrol records the squad's home on first contact, then sends it after the
// best target in reach or back home when there is none.
func (e *Engine) patrol(sq model.Squad, action Action) (bool, error) {
	if e.homes.Record(sq.ID, sq.Position) {
		slog.Debug("squad home recorded", "squad", sq.ID, "x", sq.Position.X, "z", sq.Position.Z)
	}
	home, _ := e.homes.Home(sq.ID)

	if c, ok := e.acquire(sq, home); ok {
		dest := model.Destination{Target: c.id, Position: c.pos}
		if sq.Dest.Target == c.id && !e.isIdle(sq) {
			// Already on it; make sure the load is counted.
			e.applyMove(sq.ID, dest)
			return false, nil
		}
		return e.issue(sq, dest, action)
	}

	if e.headingHome(sq, home) {
		return false, nil
	}
	return e.issue(sq, model.Destination{Position: home}, ActionReturn)
}

// rebalance decides whether a squad holding a target should move on. A
// squad only leaves a live target when that target is overloaded and the
// alternative stays strictly less loaded after the move, so two squads can
// never trade places back and forth.
func (e *Engine) rebalance(sq model.Squad, held model.ID) (bool, error) {
	if !e.holdable(held) {
		e.release(sq.ID)
		return e.patrol(sq, ActionTransfer)
	}

	rules, _ := e.registry.rules(held)
	cur, _ := e.registry.Points(held)
	// Only a target loaded above its threshold gives squads away.
	if cur <= rules.HoldThreshold {
		return false, nil
	}

	home, ok := e.homes.Home(sq.ID)
	if !ok {
		home = sq.Position
	}
	alt, ok := e.acquire(sq, home)
	if !ok || alt.id == held {
		return false, nil
	}
	altRules, _ := e.registry.rules(alt.id)
	if alt.points >= altRules.HoldThreshold || alt.points+altRules.Increment >= cur {
		return false, nil
	}

	slog.Debug("moving squad off overloaded target",
		"squad", sq.ID,
		"from", held,
		"fromPoints", cur,
		"to", alt.id,
		"toPoints", alt.points,
	)
	return e.issue(sq, model.Destination{Target: alt.id, Position: alt.pos}, ActionTransfer)
}

func (e *Engine) issue(sq model.Squad, dest model.Destination, action Action) (bool, error) {
	if err := e.move(sq, dest, action); err != nil {
		return false, err
	}
	return true, nil
}

// headingHome is true when the squad is at home or already walking there,
// so it is not re-ordered every pass.
func (e *Engine) headingHome(sq model.Squad, home model.Position) bool {
	if e.world.SquaredPlanarDistance(sq.Position, home) <= homeToleranceSq {
		return true
	}
	return sq.Moving && !sq.Dest.IsTarget() &&
		e.world.SquaredPlanarDistance(sq.Dest.Position, home) <= homeToleranceSq
}
