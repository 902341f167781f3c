package agent

import (
	"errors"
	"testing"

	"github.com/nstehr/vimy/vimy-patrol/ipc"
	"github.com/nstehr/vimy/vimy-patrol/model"
	"github.com/nstehr/vimy/vimy-patrol/patrol"
)

type fakeSender struct {
	moves []ipc.MoveCommand
	err   error
}

func (s *fakeSender) Send(msgType string, data any) error {
	if s.err != nil {
		return s.err
	}
	if msgType == ipc.TypeMove {
		s.moves = append(s.moves, data.(ipc.MoveCommand))
	}
	return nil
}

type fakeJournal struct {
	player    string
	decisions []patrol.Decision
}

func (j *fakeJournal) For(player string) patrol.Recorder {
	j.player = player
	return j
}

func (j *fakeJournal) Record(d patrol.Decision) error {
	j.decisions = append(j.decisions, d)
	return nil
}

func newTestAgent(t *testing.T) (*Agent, *fakeSender) {
	t.Helper()
	s := &fakeSender{}
	a, err := New(s, patrol.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, s
}

func envelope(t *testing.T, msgType string, data any) ipc.Envelope {
	t.Helper()
	env, err := ipc.NewEnvelope(msgType, data)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	return env
}

func friendly(id model.ID, x float64) model.Squad {
	return model.Squad{
		ID:       id,
		Type:     "default",
		Position: model.Position{X: x},
		Idle:     true,
		Dest:     model.Destination{Position: model.Position{X: x}},
	}
}

func hostile(id model.ID, x float64) model.Target {
	return model.Target{ID: id, Kind: model.KindSiege, Position: model.Position{X: x}, Valid: true}
}

func mustHandle(t *testing.T, h ipc.Handler, env ipc.Envelope) *ipc.Envelope {
	t.Helper()
	resp, err := h(env)
	if err != nil {
		t.Fatalf("%s handler: %v", env.Type, err)
	}
	return resp
}

func TestHandleHello(t *testing.T) {
	a, _ := newTestAgent(t)
	j := &fakeJournal{}
	a.journal = j

	resp := mustHandle(t, a.HandleHello, envelope(t, ipc.TypeHello, ipc.HelloMessage{
		Player:   "Multi0",
		Landmass: &ipc.LandmassData{Cols: 2, Rows: 1, CellW: 10, CellH: 10, Grid: []int{0, 1}},
	}))
	if resp == nil || resp.Type != ipc.TypeAck {
		t.Fatalf("expected ack, got %+v", resp)
	}
	if a.Player != "Multi0" || j.player != "Multi0" {
		t.Errorf("player = %q, journal player = %q", a.Player, j.player)
	}
	if got := a.world.LandmassOf(model.Position{X: 15}); got != 1 {
		t.Errorf("LandmassOf(15) = %d, want 1", got)
	}
}

func TestExplicitNotificationsDriveEngine(t *testing.T) {
	a, s := newTestAgent(t)
	h := a.Handlers()

	mustHandle(t, h[ipc.TypeTargetSpawned], envelope(t, ipc.TypeTargetSpawned, ipc.TargetSpawnedMessage{
		ID: 70, Kind: model.KindSiege, Position: model.Position{X: 5},
	}))
	resp := mustHandle(t, h[ipc.TypeTick], envelope(t, ipc.TypeTick, ipc.TickMessage{
		Tick: 1, ElapsedMs: 16,
		Squads:  []model.Squad{friendly(1, 0)},
		Targets: []model.Target{hostile(70, 5)},
	}))
	if resp == nil || resp.Type != ipc.TypeAck {
		t.Fatalf("tick should be acked, got %+v", resp)
	}
	if len(s.moves) != 1 {
		t.Fatalf("moves = %+v, want one engage", s.moves)
	}
	if s.moves[0].Squad != 1 || s.moves[0].TargetID != 70 || s.moves[0].X != 5 {
		t.Errorf("move = %+v", s.moves[0])
	}

	// Host echo of the same order changes nothing.
	mustHandle(t, h[ipc.TypeMoveIssued], envelope(t, ipc.TypeMoveIssued, ipc.MoveIssuedMessage{
		Squad: 1, TargetID: 70, X: 5,
	}))
	if p, _ := a.Engine.Registry().Points(70); p != 1 {
		t.Errorf("points after echo = %d, want 1", p)
	}

	moving := friendly(1, 3)
	moving.Moving = true
	moving.Dest = model.Destination{Target: 70, Position: model.Position{X: 5}}
	mustHandle(t, h[ipc.TypeTick], envelope(t, ipc.TypeTick, ipc.TickMessage{
		Tick: 2, ElapsedMs: 16,
		Squads:  []model.Squad{moving},
		Targets: []model.Target{hostile(70, 5)},
	}))
	if len(s.moves) != 1 {
		t.Fatalf("a squad already en route should not be re-ordered: %+v", s.moves)
	}

	mustHandle(t, h[ipc.TypeTargetRemoved], envelope(t, ipc.TypeTargetRemoved, ipc.EntityMessage{ID: 70}))
	if len(s.moves) != 2 {
		t.Fatalf("moves = %+v, want engage then recall", s.moves)
	}
	if s.moves[1].TargetID != 0 || s.moves[1].X != 0 {
		t.Errorf("recall = %+v, want home at origin", s.moves[1])
	}
	if a.Engine.Homes().Len() != 0 {
		t.Error("homes should be cleared after recall")
	}
}

func TestDiffedTicksDriveEngine(t *testing.T) {
	a, s := newTestAgent(t)
	h := a.Handlers()

	mustHandle(t, h[ipc.TypeTick], envelope(t, ipc.TypeTick, ipc.TickMessage{
		Tick: 1, ElapsedMs: 16, Diff: true,
		Squads:  []model.Squad{friendly(1, 0)},
		Targets: []model.Target{hostile(70, 5)},
	}))
	if !a.Engine.Registry().Has(70) {
		t.Fatal("target should be registered from the diff")
	}
	if len(s.moves) != 1 || s.moves[0].TargetID != 70 {
		t.Fatalf("moves = %+v, want engage", s.moves)
	}

	moving := friendly(1, 3)
	moving.Moving = true
	moving.Dest = model.Destination{Target: 70, Position: model.Position{X: 5}}
	mustHandle(t, h[ipc.TypeTick], envelope(t, ipc.TypeTick, ipc.TickMessage{
		Tick: 2, ElapsedMs: 16, Diff: true,
		Squads: []model.Squad{moving},
	}))
	if a.Engine.Registry().IsActive() {
		t.Fatal("registry should be empty after the target vanished")
	}
	if len(s.moves) != 2 || s.moves[1].TargetID != 0 || s.moves[1].X != 0 {
		t.Fatalf("moves = %+v, want recall home", s.moves)
	}
}

func TestDiffedSquadRemoval(t *testing.T) {
	a, _ := newTestAgent(t)
	h := a.Handlers()

	mustHandle(t, h[ipc.TypeTick], envelope(t, ipc.TypeTick, ipc.TickMessage{
		Tick: 1, Diff: true,
		Squads:  []model.Squad{friendly(1, 0), friendly(2, 1)},
		Targets: []model.Target{hostile(70, 5)},
	}))
	if _, ok := a.Engine.Ledger().Held(2); !ok {
		t.Fatal("squad 2 should hold the target")
	}
	mustHandle(t, h[ipc.TypeTick], envelope(t, ipc.TypeTick, ipc.TickMessage{
		Tick: 2, Diff: true,
		Squads:  []model.Squad{friendly(1, 0)},
		Targets: []model.Target{hostile(70, 5)},
	}))
	if _, ok := a.Engine.Ledger().Held(2); ok {
		t.Error("removed squad should no longer hold the target")
	}
	if _, ok := a.Engine.Homes().Home(2); ok {
		t.Error("removed squad should have no home")
	}
}

func TestHandleSquadRemoved(t *testing.T) {
	a, _ := newTestAgent(t)
	h := a.Handlers()
	mustHandle(t, h[ipc.TypeTargetSpawned], envelope(t, ipc.TypeTargetSpawned, ipc.TargetSpawnedMessage{
		ID: 70, Kind: model.KindSiege, Position: model.Position{X: 5},
	}))
	mustHandle(t, h[ipc.TypeTick], envelope(t, ipc.TypeTick, ipc.TickMessage{
		Tick: 1, Squads: []model.Squad{friendly(1, 0)}, Targets: []model.Target{hostile(70, 5)},
	}))

	mustHandle(t, h[ipc.TypeSquadRemoved], envelope(t, ipc.TypeSquadRemoved, ipc.EntityMessage{ID: 1}))
	if p, _ := a.Engine.Registry().Points(70); p != 0 {
		t.Errorf("points = %d, want 0 after squad removal", p)
	}
	if len(a.world.Squads()) != 0 {
		t.Error("world view should drop the squad")
	}
}

func TestHandleTargetArrived(t *testing.T) {
	a, s := newTestAgent(t)
	h := a.Handlers()
	mustHandle(t, h[ipc.TypeTargetSpawned], envelope(t, ipc.TypeTargetSpawned, ipc.TargetSpawnedMessage{
		ID: 70, Kind: model.KindSiege, Position: model.Position{X: 5},
	}))
	mustHandle(t, h[ipc.TypeTick], envelope(t, ipc.TypeTick, ipc.TickMessage{
		Tick: 1, Squads: []model.Squad{friendly(1, 0)}, Targets: []model.Target{hostile(70, 5)},
	}))

	mustHandle(t, h[ipc.TypeTargetSpawned], envelope(t, ipc.TypeTargetSpawned, ipc.TargetSpawnedMessage{
		ID: 71, Kind: model.KindSiege, Position: model.Position{X: -2},
	}))
	mustHandle(t, h[ipc.TypeTargetArrived], envelope(t, ipc.TypeTargetArrived, ipc.EntityMessage{ID: 71}))

	// Load was reset, so squad 1 picks the nearer fresh arrival.
	last := s.moves[len(s.moves)-1]
	if last.Squad != 1 || last.TargetID != 71 {
		t.Errorf("last move = %+v, want squad 1 to target 71", last)
	}
}

func TestHandleConfigMergesPartialUpdate(t *testing.T) {
	a, _ := newTestAgent(t)
	radius := 30.0
	siege := false
	interval := 250

	resp := mustHandle(t, a.HandleConfig, envelope(t, ipc.TypeConfig, ipc.ConfigMessage{
		PatrolRadius:        &radius,
		Siege:               &siege,
		RebalanceIntervalMs: &interval,
	}))
	if resp == nil || resp.Type != ipc.TypeAck {
		t.Fatalf("expected ack, got %+v", resp)
	}
	cfg := a.Engine.Config()
	if cfg.PatrolRadius != 30 || cfg.Targets.Siege || cfg.RebalanceInterval.Milliseconds() != 250 {
		t.Errorf("config = %+v", cfg)
	}
	if !cfg.Enabled || !cfg.SoftenedSearch || !cfg.Targets.RaiderMain {
		t.Errorf("absent fields should keep their values: %+v", cfg)
	}
}

func TestHandleReset(t *testing.T) {
	a, _ := newTestAgent(t)
	h := a.Handlers()
	mustHandle(t, h[ipc.TypeTick], envelope(t, ipc.TypeTick, ipc.TickMessage{
		Tick: 1, Diff: true,
		Squads:  []model.Squad{friendly(1, 0)},
		Targets: []model.Target{hostile(70, 5)},
	}))

	mustHandle(t, a.HandleReset, ipc.Envelope{Type: ipc.TypeReset})
	if a.Engine.Registry().IsActive() || a.Engine.Homes().Len() != 0 || a.Engine.Ledger().Len() != 0 {
		t.Error("reset should clear all engine state")
	}
	if a.prev != nil || len(a.world.Squads()) != 0 {
		t.Error("reset should clear the world view")
	}
}

func TestHandlersRejectMalformedPayload(t *testing.T) {
	a, _ := newTestAgent(t)
	for msgType, h := range a.Handlers() {
		if msgType == ipc.TypeReset {
			continue
		}
		if _, err := h(ipc.Envelope{Type: msgType, Data: []byte(`"nope"`)}); err == nil {
			t.Errorf("%s: expected decode error", msgType)
		}
	}
}

func TestHandleTargetSpawnedUnknownKind(t *testing.T) {
	a, _ := newTestAgent(t)
	env := ipc.Envelope{Type: ipc.TypeTargetSpawned, Data: []byte(`{"id": 5}`)}
	if _, err := a.HandleTargetSpawned(env); !errors.Is(err, patrol.ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
}

func TestWorldViewSquadGone(t *testing.T) {
	w := newWorldView(&fakeSender{})
	if _, err := w.Squad(9); !errors.Is(err, patrol.ErrSquadGone) {
		t.Fatalf("err = %v, want ErrSquadGone", err)
	}
}

func TestWorldViewIssueMove(t *testing.T) {
	s := &fakeSender{}
	w := newWorldView(s)
	w.update(ipc.TickMessage{Squads: []model.Squad{friendly(1, 0)}})

	dest := model.Destination{Target: 70, Position: model.Position{X: 5}}
	if err := w.IssueMove(1, dest); err != nil {
		t.Fatalf("IssueMove: %v", err)
	}
	sq, _ := w.Squad(1)
	if !sq.Moving || sq.Dest != dest {
		t.Errorf("squad after move = %+v", sq)
	}

	s.err = errors.New("broken pipe")
	if err := w.IssueMove(1, dest); err == nil {
		t.Fatal("expected send error")
	}
}

func TestWorldViewTargetValidity(t *testing.T) {
	w := newWorldView(&fakeSender{})
	stale := hostile(71, 3)
	stale.Valid = false
	w.update(ipc.TickMessage{Targets: []model.Target{hostile(70, 5), stale}})

	if _, ok := w.TargetPosition(70); !ok {
		t.Error("valid target should resolve")
	}
	if _, ok := w.TargetPosition(71); ok {
		t.Error("invalid target should not resolve")
	}
	if _, ok := w.TargetPosition(72); ok {
		t.Error("unknown target should not resolve")
	}
}

func TestWorldViewKeepsHostOrder(t *testing.T) {
	w := newWorldView(&fakeSender{})
	w.update(ipc.TickMessage{Squads: []model.Squad{friendly(5, 0), friendly(2, 0), friendly(9, 0)}})
	w.removeSquad(2)

	got := w.Squads()
	if len(got) != 2 || got[0] != 5 || got[1] != 9 {
		t.Errorf("Squads() = %v, want [5 9]", got)
	}
}
