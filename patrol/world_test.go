package patrol

import (
	"fmt"
	"testing"

	"github.com/nstehr/vimy/vimy-patrol/model"
)

type moveCall struct {
	squad model.ID
	dest  model.Destination
}

// fakeWorld is an in-memory host. Landmass is decided by the sign of X so
// tests can put things "across the water" by going negative.
type fakeWorld struct {
	targets  map[model.ID]*model.Target
	squads   []*model.Squad
	readErrs map[model.ID]error
	moveErr  error
	moves    []moveCall
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		targets:  make(map[model.ID]*model.Target),
		readErrs: make(map[model.ID]error),
	}
}

func (w *fakeWorld) LandmassOf(pos model.Position) int {
	if pos.X < 0 {
		return 1
	}
	return 0
}

func (w *fakeWorld) SquaredPlanarDistance(a, b model.Position) float64 {
	return model.SquaredPlanarDistance(a, b)
}

func (w *fakeWorld) TargetPosition(id model.ID) (model.Position, bool) {
	t, ok := w.targets[id]
	if !ok || !t.Valid {
		return model.Position{}, false
	}
	return t.Position, true
}

func (w *fakeWorld) Squads() []model.ID {
	ids := make([]model.ID, len(w.squads))
	for i, s := range w.squads {
		ids[i] = s.ID
	}
	return ids
}

func (w *fakeWorld) Squad(id model.ID) (model.Squad, error) {
	if err := w.readErrs[id]; err != nil {
		return model.Squad{}, err
	}
	for _, s := range w.squads {
		if s.ID == id {
			return *s, nil
		}
	}
	return model.Squad{}, fmt.Errorf("squad %d: %w", id, ErrSquadGone)
}

// IssueMove records the order and starts the squad walking, the way the
// host would.
func (w *fakeWorld) IssueMove(squad model.ID, dest model.Destination) error {
	if w.moveErr != nil {
		return w.moveErr
	}
	w.moves = append(w.moves, moveCall{squad: squad, dest: dest})
	if s := w.squad(squad); s != nil {
		s.Dest = dest
		s.Moving = true
	}
	return nil
}

func (w *fakeWorld) squad(id model.ID) *model.Squad {
	for _, s := range w.squads {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (w *fakeWorld) addSquad(id model.ID, x, z float64) *model.Squad {
	s := &model.Squad{ID: id, Team: 0, Type: "default", Position: model.Position{X: x, Z: z}, Idle: true}
	w.squads = append(w.squads, s)
	return s
}

func (w *fakeWorld) addTarget(id model.ID, kind model.TargetKind, x, z float64) *model.Target {
	t := &model.Target{ID: id, Kind: kind, Position: model.Position{X: x, Z: z}, Valid: true}
	w.targets[id] = t
	return t
}

// arrive stops a squad where it stands, keeping its last order.
func (w *fakeWorld) arrive(id model.ID) {
	if s := w.squad(id); s != nil {
		s.Moving = false
	}
}

func (w *fakeWorld) movesFor(id model.ID) []model.Destination {
	var out []model.Destination
	for _, m := range w.moves {
		if m.squad == id {
			out = append(out, m.dest)
		}
	}
	return out
}

type fakeRecorder struct {
	decisions []Decision
}

func (r *fakeRecorder) Record(d Decision) error {
	r.decisions = append(r.decisions, d)
	return nil
}

func newTestEngine(t *testing.T, w *fakeWorld) *Engine {
	t.Helper()
	e, err := NewEngine(w, DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

// spawn registers every target in the fake world with the engine.
func spawn(t *testing.T, e *Engine, targets ...*model.Target) {
	t.Helper()
	for _, tg := range targets {
		if err := e.OnTargetSpawned(tg.ID, tg.Kind); err != nil {
			t.Fatalf("OnTargetSpawned(%d) failed: %v", tg.ID, err)
		}
	}
}

func points(t *testing.T, e *Engine, id model.ID) int {
	t.Helper()
	p, ok := e.Registry().Points(id)
	if !ok {
		t.Fatalf("target %d not registered", id)
	}
	return p
}
