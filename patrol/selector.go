package patrol

import (
	"github.com/nstehr/vimy/vimy-patrol/model"
)

// Widening factors for the softened search.
const (
	widenedHomeFactor = 1.5
	localSearchFactor = 0.5
)

type candidate struct {
	id     model.ID
	points int
	distSq float64
	pos    model.Position
}

// better ranks by load first, distance second. The handle breaks exact ties
// so the result does not depend on map order.
func (c candidate) better(o candidate) bool {
	if c.points != o.points {
		return c.points < o.points
	}
	if c.distSq != o.distSq {
		return c.distSq < o.distSq
	}
	return c.id < o.id
}

// SelectTarget returns the least-loaded reachable target within radius of
// origin, breaking load ties by distance. It reads the world but mutates
// nothing.
func (e *Engine) SelectTarget(origin model.Position, radius float64) (model.ID, bool) {
	c, ok := e.selectCandidate(origin, radius)
	return c.id, ok
}

func (e *Engine) selectCandidate(origin model.Position, radius float64) (candidate, bool) {
	var best candidate
	found := false
	originLandmass := e.world.LandmassOf(origin)
	if originLandmass == model.NoLandmass {
		return best, false
	}
	radiusSq := radius * radius

	for _, id := range e.registry.Targets() {
		kind, _ := e.registry.Kind(id)
		if !e.cfg.Targets.Enabled(kind) {
			continue
		}
		pos, ok := e.world.TargetPosition(id)
		if !ok {
			continue
		}
		if e.world.LandmassOf(pos) != originLandmass {
			continue
		}
		distSq := e.world.SquaredPlanarDistance(origin, pos)
		if distSq > radiusSq {
			continue
		}
		points, _ := e.registry.Points(id)
		c := candidate{id: id, points: points, distSq: distSq, pos: pos}
		if !found || c.better(best) {
			best = c
			found = true
		}
	}
	return best, found
}

// acquire runs the patrol search for a squad: around home first, then the
// softened fallbacks when enabled. The local search around the squad's own
// position only applies while the squad is still near home, so a squad
// chasing a fleeing target cannot be led arbitrarily far away.
func (e *Engine) acquire(sq model.Squad, home model.Position) (candidate, bool) {
	r := e.cfg.PatrolRadius
	if c, ok := e.selectCandidate(home, r); ok {
		return c, true
	}
	if !e.cfg.SoftenedSearch {
		return candidate{}, false
	}
	if c, ok := e.selectCandidate(home, r*widenedHomeFactor); ok {
		return c, true
	}
	wide := r * widenedHomeFactor
	if e.world.SquaredPlanarDistance(sq.Position, home) > wide*wide {
		return candidate{}, false
	}
	return e.selectCandidate(sq.Position, r*localSearchFactor)
}

// holdable reports whether a squad may keep pursuing target.
func (e *Engine) holdable(target model.ID) bool {
	kind, ok := e.registry.Kind(target)
	if !ok || !e.cfg.Targets.Enabled(kind) {
		return false
	}
	_, ok = e.world.TargetPosition(target)
	return ok
}
