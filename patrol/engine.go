package patrol

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/vimy/vimy-patrol/model"
)

// Engine assigns friendly squads to hostile targets. It owns the target
// registry, the home tracker and the assignment ledger; nothing outside the
// engine writes them. All methods run synchronously on the caller's
// goroutine and the engine is not safe for concurrent use.
type Engine struct {
	world    World
	cfg      Config
	filter   *vm.Program
	registry *Registry
	homes    *HomeTracker
	ledger   *Ledger
	recorder Recorder

	elapsed time.Duration // rebalance accumulator
	tick    uint64
	passes  int
}

// NewEngine validates cfg and compiles its squad filter.
func NewEngine(world World, cfg Config) (*Engine, error) {
	cfg.Validate()
	prog, err := compileFilter(cfg.SquadFilter)
	if err != nil {
		return nil, err
	}
	return &Engine{
		world:    world,
		cfg:      cfg,
		filter:   prog,
		registry: NewRegistry(),
		homes:    NewHomeTracker(),
		ledger:   NewLedger(),
	}, nil
}

// SetRecorder attaches a decision journal. Pass nil to detach.
func (e *Engine) SetRecorder(r Recorder) { e.recorder = r }

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Registry() *Registry { return e.registry }

func (e *Engine) Homes() *HomeTracker { return e.homes }

func (e *Engine) Ledger() *Ledger { return e.ledger }

// ApplyConfig swaps in a new configuration. Compilation happens first; if
// it fails the old config stays active. Toggling the feature drops every
// home and hold and resets target load, so squads start tracking again from
// scratch without the targets being re-registered. Kind switches need no
// reset: the next rebalance pass pulls squads off disabled kinds.
func (e *Engine) ApplyConfig(cfg Config) error {
	cfg.Validate()
	prog, err := compileFilter(cfg.SquadFilter)
	if err != nil {
		return err
	}
	toggled := cfg.Enabled != e.cfg.Enabled
	e.cfg = cfg
	e.filter = prog
	if toggled {
		e.homes.Clear()
		e.ledger.Clear()
		e.registry.ResetLoad()
		e.elapsed = 0
	}
	slog.Info("patrol config applied",
		"enabled", cfg.Enabled,
		"radius", cfg.PatrolRadius,
		"softened", cfg.SoftenedSearch,
		"interval", cfg.RebalanceInterval,
		"filter", cfg.SquadFilter,
		"reset", toggled,
	)
	return nil
}

// OnReset forgets everything. The registry repopulates from later spawns.
func (e *Engine) OnReset() {
	e.registry.Clear()
	e.homes.Clear()
	e.ledger.Clear()
	e.elapsed = 0
	e.passes = 0
	slog.Info("patrol state reset")
}

// PassReport summarizes one tick.
type PassReport struct {
	Tick       uint64
	Rebalanced bool
	Evaluated  int
	Moves      int
	Skipped    int
}

// OnTick advances the engine by elapsed. Idle squads are evaluated every
// tick; every squad is re-evaluated once per RebalanceInterval.
func (e *Engine) OnTick(elapsed time.Duration) PassReport {
	e.tick++
	report := PassReport{Tick: e.tick}
	if !e.cfg.Enabled {
		return report
	}

	e.sweepInvalidTargets()
	if !e.registry.IsActive() {
		e.elapsed = 0
		return report
	}

	e.elapsed += elapsed
	if e.elapsed >= e.cfg.RebalanceInterval {
		// One pass per tick at most; a long stall does not trigger a burst.
		e.elapsed %= e.cfg.RebalanceInterval
		report.Rebalanced = true
	}

	e.runPass(&report)
	if report.Rebalanced {
		e.passes++
		e.logDiagnostics(report)
	}
	return report
}

func (e *Engine) runPass(report *PassReport) {
	for _, id := range e.world.Squads() {
		moved, err := e.evaluate(id, report.Rebalanced)
		if err != nil {
			report.Skipped++
			slog.Warn("squad evaluation skipped", "squad", id, "tick", e.tick, "error", err)
			continue
		}
		report.Evaluated++
		if moved {
			report.Moves++
		}
	}
}

// sweepInvalidTargets unregisters targets whose handles went stale without
// a despawn notification.
func (e *Engine) sweepInvalidTargets() {
	for _, id := range e.registry.Targets() {
		if _, ok := e.world.TargetPosition(id); !ok {
			slog.Debug("target failed validity check", "target", id)
			e.OnTargetRemoved(id)
		}
	}
}

// move issues the order and runs the bookkeeping through the same choke
// point that externally issued orders go through.
func (e *Engine) move(sq model.Squad, dest model.Destination, action Action) error {
	if err := e.world.IssueMove(sq.ID, dest); err != nil {
		return fmt.Errorf("issue %s move for squad %d: %w", action, sq.ID, err)
	}
	e.applyMove(sq.ID, dest)
	e.record(sq.ID, dest, action)
	return nil
}

func (e *Engine) record(squad model.ID, dest model.Destination, action Action) {
	d := Decision{
		Tick:   e.tick,
		Squad:  squad,
		Action: action,
		Target: dest.Target,
		Dest:   dest.Position,
	}
	if home, ok := e.homes.Home(squad); ok {
		d.Home = home
	}
	if dest.IsTarget() {
		if kind, ok := e.registry.Kind(dest.Target); ok {
			d.Kind = kind.String()
		}
		d.Points, _ = e.registry.Points(dest.Target)
	}
	slog.Debug("squad ordered",
		"squad", squad,
		"action", action,
		"target", dest.Target,
		"points", d.Points,
		"x", dest.Position.X,
		"z", dest.Position.Z,
	)
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(d); err != nil {
		slog.Warn("decision journal write failed", "squad", squad, "error", err)
	}
}

// logDiagnostics helps answer "why is everyone on one target?". Fires every
// 30 rebalance passes.
func (e *Engine) logDiagnostics(report PassReport) {
	if e.passes%30 != 1 {
		return
	}
	load := make(map[string]int, e.registry.Len())
	for _, id := range e.registry.Targets() {
		p, _ := e.registry.Points(id)
		load[fmt.Sprint(id)] = p
	}
	slog.Info("patrol diagnostics",
		"tick", report.Tick,
		"targets", e.registry.Len(),
		"homes", e.homes.Len(),
		"holds", e.ledger.Len(),
		"evaluated", report.Evaluated,
		"moves", report.Moves,
		"skipped", report.Skipped,
		"load", load,
	)
}
