package capture

import (
	"time"

	"github.com/ayusman/airctrl/internal/timeutil"
)

// Mode is the frame loop's activity mode.
type Mode int

const (
	// ModeIdle samples slowly and skips hand detection.
	ModeIdle Mode = iota
	// ModeActive samples at full rate and runs hand detection.
	ModeActive
)

func (m Mode) String() string {
	if m == ModeActive {
		return "active"
	}
	return "idle"
}

// GateConfig holds the motion gate rates and timeout.
type GateConfig struct {
	IdleFPS     int
	ActiveFPS   int
	IdleTimeout time.Duration
}

// DefaultGateConfig returns 5fps idle, 15fps active and a 2s timeout.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		IdleFPS:     5,
		ActiveFPS:   15,
		IdleTimeout: 2 * time.Second,
	}
}

// Gate switches between idle and active mode: motion activates it, and
// IdleTimeout without motion returns it to idle. Not safe for concurrent use.
type Gate struct {
	cfg        GateConfig
	clock      timeutil.Clock
	mode       Mode
	lastMotion time.Time
}

// NewGate creates a Gate in idle mode. A nil clock uses the wall clock.
func NewGate(cfg GateConfig, clock timeutil.Clock) *Gate {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Gate{cfg: cfg, clock: clock, lastMotion: clock.Now()}
}

// Observe records whether the latest frame had motion and returns the
// resulting mode and whether it changed.
func (g *Gate) Observe(motion bool) (Mode, bool) {
	if motion {
		g.lastMotion = g.clock.Now()
		if g.mode != ModeActive {
			g.mode = ModeActive
			return g.mode, true
		}
		return g.mode, false
	}

	if g.mode == ModeActive && g.clock.Since(g.lastMotion) > g.cfg.IdleTimeout {
		g.mode = ModeIdle
		return g.mode, true
	}
	return g.mode, false
}

// Mode returns the current mode.
func (g *Gate) Mode() Mode { return g.mode }

// FPS returns the sampling rate of the current mode.
func (g *Gate) FPS() int {
	if g.mode == ModeActive {
		return g.cfg.ActiveFPS
	}
	return g.cfg.IdleFPS
}

// Interval returns the frame interval of the current mode.
func (g *Gate) Interval() time.Duration {
	fps := g.FPS()
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}

// Force sets the mode directly, for callers that bypass motion detection.
func (g *Gate) Force(m Mode) {
	g.mode = m
	g.lastMotion = g.clock.Now()
}
