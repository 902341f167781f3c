package agent

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nstehr/vimy/vimy-patrol/ipc"
	"github.com/nstehr/vimy/vimy-patrol/model"
	"github.com/nstehr/vimy/vimy-patrol/patrol"
)

// Journal hands out per-player decision recorders.
type Journal interface {
	For(player string) patrol.Recorder
}

// Agent owns the patrol engine for a single player session. Its handlers run
// on the connection's read loop, which serializes every engine call.
type Agent struct {
	Player  string
	Engine  *patrol.Engine
	world   *worldView
	journal Journal
	prev    *stateSnapshot
}

func New(sender Sender, cfg patrol.Config, journal Journal) (*Agent, error) {
	world := newWorldView(sender)
	engine, err := patrol.NewEngine(world, cfg)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return &Agent{Engine: engine, world: world, journal: journal}, nil
}

// Handlers maps every host message type to its handler.
func (a *Agent) Handlers() map[string]ipc.Handler {
	return map[string]ipc.Handler{
		ipc.TypeHello:         a.HandleHello,
		ipc.TypeTick:          a.HandleTick,
		ipc.TypeTargetSpawned: a.HandleTargetSpawned,
		ipc.TypeTargetRemoved: a.HandleTargetRemoved,
		ipc.TypeTargetArrived: a.HandleTargetArrived,
		ipc.TypeSquadRemoved:  a.HandleSquadRemoved,
		ipc.TypeMoveIssued:    a.HandleMoveIssued,
		ipc.TypeConfig:        a.HandleConfig,
		ipc.TypeReset:         a.HandleReset,
	}
}

func ack() (*ipc.Envelope, error) {
	env, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// HandleHello completes the handshake so the mod knows the bridge is ready.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}

	a.Player = hello.Player
	a.world.grid = nil
	if lm := hello.Landmass; lm != nil {
		a.world.grid = &model.LandmassGrid{
			Cols:  lm.Cols,
			Rows:  lm.Rows,
			CellW: lm.CellW,
			CellH: lm.CellH,
			Grid:  lm.Grid,
		}
	}
	if a.journal != nil {
		a.Engine.SetRecorder(a.journal.For(a.Player))
	}
	slog.Info("player identified",
		"player", a.Player,
		"landmasses", a.world.grid.Landmasses(),
	)
	return ack()
}

// HandleTick refreshes the world view, replays derived lifecycle events when
// the host asked for diffing, then advances the engine.
func (a *Agent) HandleTick(env ipc.Envelope) (*ipc.Envelope, error) {
	var tick ipc.TickMessage
	if err := env.Decode(&tick); err != nil {
		return nil, err
	}

	a.world.update(tick)
	if tick.Diff {
		a.applyEvents(detectEvents(tick, a.prev))
		snap := takeSnapshot(tick)
		a.prev = &snap
	}

	report := a.Engine.OnTick(time.Duration(tick.ElapsedMs) * time.Millisecond)
	if report.Moves > 0 || report.Skipped > 0 {
		slog.Debug("tick evaluated",
			"player", a.Player,
			"tick", tick.Tick,
			"rebalanced", report.Rebalanced,
			"moves", report.Moves,
			"skipped", report.Skipped,
		)
	}
	return ack()
}

func (a *Agent) applyEvents(events []Event) {
	for _, ev := range events {
		switch ev.Kind {
		case EventTargetSpawned:
			if err := a.Engine.OnTargetSpawned(ev.ID, ev.Target); err != nil {
				slog.Warn("derived spawn rejected", "target", ev.ID, "error", err)
			}
		case EventTargetRemoved:
			a.Engine.OnTargetRemoved(ev.ID)
		case EventSquadRemoved:
			a.Engine.OnSquadRemoved(ev.ID)
		}
	}
}

func (a *Agent) HandleTargetSpawned(env ipc.Envelope) (*ipc.Envelope, error) {
	var msg ipc.TargetSpawnedMessage
	if err := env.Decode(&msg); err != nil {
		return nil, err
	}
	a.world.putTarget(model.Target{ID: msg.ID, Kind: msg.Kind, Position: msg.Position, Valid: true})
	if err := a.Engine.OnTargetSpawned(msg.ID, msg.Kind); err != nil {
		return nil, err
	}
	return nil, nil
}

func (a *Agent) HandleTargetRemoved(env ipc.Envelope) (*ipc.Envelope, error) {
	var msg ipc.EntityMessage
	if err := env.Decode(&msg); err != nil {
		return nil, err
	}
	a.world.removeTarget(msg.ID)
	a.Engine.OnTargetRemoved(msg.ID)
	return nil, nil
}

func (a *Agent) HandleTargetArrived(env ipc.Envelope) (*ipc.Envelope, error) {
	var msg ipc.EntityMessage
	if err := env.Decode(&msg); err != nil {
		return nil, err
	}
	a.Engine.OnTargetArrived(msg.ID)
	return nil, nil
}

func (a *Agent) HandleSquadRemoved(env ipc.Envelope) (*ipc.Envelope, error) {
	var msg ipc.EntityMessage
	if err := env.Decode(&msg); err != nil {
		return nil, err
	}
	a.world.removeSquad(msg.ID)
	a.Engine.OnSquadRemoved(msg.ID)
	return nil, nil
}

// HandleMoveIssued sees every order the host executed, including echoes of
// the sidecar's own commands and orders the player gave by hand.
func (a *Agent) HandleMoveIssued(env ipc.Envelope) (*ipc.Envelope, error) {
	var msg ipc.MoveIssuedMessage
	if err := env.Decode(&msg); err != nil {
		return nil, err
	}
	dest := msg.Destination()
	a.world.setDest(msg.Squad, dest)
	a.Engine.OnMoveIssued(msg.Squad, dest)
	return nil, nil
}

// HandleConfig applies a partial update from the mod's options menu. A bad
// update is rejected whole and the engine keeps running on the old config.
func (a *Agent) HandleConfig(env ipc.Envelope) (*ipc.Envelope, error) {
	var msg ipc.ConfigMessage
	if err := env.Decode(&msg); err != nil {
		return nil, err
	}
	if err := a.Engine.ApplyConfig(mergeConfig(a.Engine.Config(), msg)); err != nil {
		return nil, fmt.Errorf("apply config: %w", err)
	}
	return ack()
}

func (a *Agent) HandleReset(ipc.Envelope) (*ipc.Envelope, error) {
	a.Engine.OnReset()
	a.world.reset()
	a.prev = nil
	return ack()
}

// mergeConfig overlays the fields present in msg onto cfg.
func mergeConfig(cfg patrol.Config, msg ipc.ConfigMessage) patrol.Config {
	if msg.Enabled != nil {
		cfg.Enabled = *msg.Enabled
	}
	if msg.PatrolRadius != nil {
		cfg.PatrolRadius = *msg.PatrolRadius
	}
	if msg.SoftenedSearch != nil {
		cfg.SoftenedSearch = *msg.SoftenedSearch
	}
	if msg.RebalanceIntervalMs != nil {
		cfg.RebalanceInterval = time.Duration(*msg.RebalanceIntervalMs) * time.Millisecond
	}
	if msg.Siege != nil {
		cfg.Targets.Siege = *msg.Siege
	}
	if msg.RaiderMain != nil {
		cfg.Targets.RaiderMain = *msg.RaiderMain
	}
	if msg.RaiderThief != nil {
		cfg.Targets.RaiderThief = *msg.RaiderThief
	}
	return cfg
}
