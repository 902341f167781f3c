package patrol

import (
	"time"

	"github.com/nstehr/vimy/vimy-patrol/model"
)

// DefaultSquadFilter admits the player's own default armies, the only
// squads the game lets the automatic commander drive.
const DefaultSquadFilter = `Team == 0 && Type == "default"`

// Config is an immutable settings value. The host replaces it wholesale
// through Engine.ApplyConfig; the engine never edits it in place.
type Config struct {
	Enabled           bool          `yaml:"enabled" env:"ENABLED"`
	PatrolRadius      float64       `yaml:"patrol_radius" env:"PATROL_RADIUS"`
	SoftenedSearch    bool          `yaml:"softened_search" env:"SOFTENED_SEARCH"`
	RebalanceInterval time.Duration `yaml:"rebalance_interval" env:"REBALANCE_INTERVAL"`
	SquadFilter       string        `yaml:"squad_filter" env:"SQUAD_FILTER"`
	Targets           KindToggles   `yaml:"targets" envPrefix:"TARGET_"`
}

// KindToggles enables or disables engagement per target kind.
type KindToggles struct {
	Siege       bool `yaml:"siege" env:"SIEGE"`
	RaiderMain  bool `yaml:"raider_main" env:"RAIDER_MAIN"`
	RaiderThief bool `yaml:"raider_thief" env:"RAIDER_THIEF"`
}

// Enabled reports whether squads may be sent after targets of kind k.
func (t KindToggles) Enabled(k model.TargetKind) bool {
	switch k {
	case model.KindSiege:
		return t.Siege
	case model.KindRaiderMain:
		return t.RaiderMain
	case model.KindRaiderThief:
		return t.RaiderThief
	}
	return false
}

func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		PatrolRadius:      10,
		SoftenedSearch:    true,
		RebalanceInterval: time.Second,
		SquadFilter:       DefaultSquadFilter,
		Targets: KindToggles{
			Siege:       true,
			RaiderMain:  true,
			RaiderThief: true,
		},
	}
}

// Validate clamps numeric settings to usable ranges and fills blanks.
func (c *Config) Validate() {
	c.PatrolRadius = clamp(c.PatrolRadius, 1, 250)
	c.RebalanceInterval = clampDuration(c.RebalanceInterval, 100*time.Millisecond, time.Minute)
	if c.SquadFilter == "" {
		c.SquadFilter = DefaultSquadFilter
	}
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampDuration(v, min, max time.Duration) time.Duration {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
