package patrol

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/vimy/vimy-patrol/model"
)

// OnTargetSpawned starts tracking a hostile. Targets are tracked even while
// the engine is disabled so re-enabling mid-threat picks them up.
func (e *Engine) OnTargetSpawned(target model.ID, kind model.TargetKind) error {
	wasActive := e.registry.IsActive()
	if err := e.registry.Register(target, kind); err != nil {
		return fmt.Errorf("register target %d: %w", target, err)
	}
	if !wasActive {
		slog.Info("threat started", "target", target, "kind", kind)
	}
	return nil
}

// OnTargetRemoved stops tracking a hostile. Squads chasing it notice on
// their next idle check or rebalance pass. When the last target goes, every
// squad with a home is recalled.
func (e *Engine) OnTargetRemoved(target model.ID) {
	if !e.registry.Has(target) {
		return
	}
	e.registry.Unregister(target)
	e.ledger.DropTarget(target)
	slog.Debug("target removed", "target", target, "remaining", e.registry.Len())
	if !e.registry.IsActive() {
		slog.Info("threat ended", "homes", e.homes.Len())
		e.recall()
	}
}

// recall sends every squad with a home back to it exactly once and forgets
// the home. Squads that cannot be read are forgotten all the same.
func (e *Engine) recall() {
	for _, id := range e.homes.Squads() {
		home, _ := e.homes.Home(id)
		if err := e.sendHome(id, home); err != nil {
			slog.Warn("recall skipped squad", "squad", id, "error", err)
		}
		e.homes.Forget(id)
	}
	e.ledger.Clear()
}

func (e *Engine) sendHome(id model.ID, home model.Position) error {
	sq, err := e.world.Squad(id)
	if err != nil {
		return fmt.Errorf("read squad %d: %w", id, err)
	}
	if e.world.SquaredPlanarDistance(sq.Position, home) <= homeToleranceSq {
		return nil
	}
	return e.move(sq, model.Destination{Position: home}, ActionRecall)
}

// OnSquadRemoved releases whatever the squad held and forgets its home.
func (e *Engine) OnSquadRemoved(squad model.ID) {
	e.release(squad)
	e.homes.Forget(squad)
}

// OnMoveIssued observes every move order, including ones the player gives.
// Orders for squads outside the filter are ignored.
func (e *Engine) OnMoveIssued(squad model.ID, dest model.Destination) {
	sq, err := e.world.Squad(squad)
	if err != nil {
		slog.Debug("move for unreadable squad ignored", "squad", squad, "error", err)
		return
	}
	ok, err := e.eligible(sq)
	if err != nil || !ok {
		return
	}
	e.applyMove(squad, dest)
}

// applyMove is the single place point accounting changes hands. It is
// idempotent, so the host echoing an order the engine issued is harmless.
func (e *Engine) applyMove(squad model.ID, dest model.Destination) {
	if dest.IsTarget() && e.registry.Has(dest.Target) {
		e.transfer(squad, dest.Target)
		return
	}
	e.release(squad)
	if e.cfg.Enabled && e.registry.IsActive() {
		e.homes.Set(squad, dest.Position)
	}
}

// transfer releases the squad's previous target before charging the new
// one.
func (e *Engine) transfer(squad, target model.ID) {
	if prev, ok := e.ledger.Held(squad); ok {
		if prev == target {
			return
		}
		e.registry.Release(prev)
	}
	e.registry.Acquire(target)
	e.ledger.Hold(squad, target)
}

func (e *Engine) release(squad model.ID) {
	prev, ok := e.ledger.Held(squad)
	if !ok {
		return
	}
	e.registry.Release(prev)
	e.ledger.Drop(squad)
}

// OnTargetArrived redistributes every squad on the arriving target's
// landmass. Load on that landmass is reset first so the fresh arrival
// competes on equal terms with targets that already drew squads.
func (e *Engine) OnTargetArrived(target model.ID) PassReport {
	report := PassReport{Tick: e.tick}
	if !e.cfg.Enabled || !e.registry.Has(target) {
		return report
	}
	pos, ok := e.world.TargetPosition(target)
	if !ok {
		e.OnTargetRemoved(target)
		return report
	}
	landmass := e.world.LandmassOf(pos)
	onLandmass := func(p model.Position) bool { return e.world.LandmassOf(p) == landmass }

	reset := e.registry.ResetLoadWhere(func(id model.ID) bool {
		p, ok := e.world.TargetPosition(id)
		return ok && onLandmass(p)
	})
	for _, id := range reset {
		e.ledger.DropTarget(id)
	}

	for _, id := range e.world.Squads() {
		moved, err := e.redistribute(id, onLandmass)
		if err != nil {
			report.Skipped++
			slog.Warn("squad redistribution skipped", "squad", id, "error", err)
			continue
		}
		report.Evaluated++
		if moved {
			report.Moves++
		}
	}
	slog.Info("squads redistributed on arrival",
		"target", target,
		"landmass", landmass,
		"targetsReset", len(reset),
		"moves", report.Moves,
	)
	return report
}

func (e *Engine) redistribute(id model.ID, onLandmass func(model.Position) bool) (bool, error) {
	sq, err := e.world.Squad(id)
	if err != nil {
		return false, fmt.Errorf("read squad %d: %w", id, err)
	}
	ok, err := e.eligible(sq)
	if err != nil {
		return false, fmt.Errorf("squad %d: %w", id, err)
	}
	if !ok || !onLandmass(sq.Position) {
		return false, nil
	}
	return e.patrol(sq, ActionRedistribute)
}
