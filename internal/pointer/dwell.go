// Package pointer turns a stream of hand positions into pointer events:
// dwell clicks, viewport coordinates and hover targets.
package pointer

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/airctrl/internal/detector"
	"github.com/ayusman/airctrl/internal/timeutil"
)

// DwellConfig holds the dwell-click settings.
type DwellConfig struct {
	// Time is how long the pointer must hold still to click.
	Time time.Duration
	// TolerancePx is how far the pointer may drift from the anchor while dwelling.
	TolerancePx float64
}

// DefaultDwellConfig returns the default dwell settings.
func DefaultDwellConfig() DwellConfig {
	return DwellConfig{
		Time:        800 * time.Millisecond,
		TolerancePx: 20,
	}
}

// ErrInvalidDwellConfig is wrapped by Validate failures.
var ErrInvalidDwellConfig = errors.New("invalid dwell config")

// Validate reports the first out-of-range field.
func (c DwellConfig) Validate() error {
	if c.Time <= 0 {
		return fmt.Errorf("%w: dwell_time must be positive, got %s", ErrInvalidDwellConfig, c.Time)
	}
	if c.TolerancePx < 0 {
		return fmt.Errorf("%w: dwell_tolerance_px must not be negative, got %g", ErrInvalidDwellConfig, c.TolerancePx)
	}
	return nil
}

// DwellDetector fires a one-shot click when a position stays within a
// tolerance radius of its anchor for the dwell time. It is owned by a single
// input stream and is not safe for concurrent use.
type DwellDetector struct {
	cfg   DwellConfig
	clock timeutil.Clock

	anchor    r2.Vec
	hasAnchor bool
	start     time.Time
	fired     bool
}

// NewDwellDetector creates a DwellDetector. A nil clock uses the wall clock.
func NewDwellDetector(cfg DwellConfig, clock timeutil.Clock) *DwellDetector {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &DwellDetector{cfg: cfg, clock: clock}
}

// Config returns the detector's settings.
func (d *DwellDetector) Config() DwellConfig {
	return d.cfg
}

// Update feeds the current position and reports whether a click fires on
// this call. ok=false means no position is available.
func (d *DwellDetector) Update(p detector.Point2D, ok bool) bool {
	if !ok {
		d.Reset()
		return false
	}

	pos := r2.Vec{X: p.X, Y: p.Y}
	if !d.hasAnchor || r2.Norm(r2.Sub(pos, d.anchor)) > d.cfg.TolerancePx {
		d.anchor = pos
		d.hasAnchor = true
		d.start = d.clock.Now()
		d.fired = false
		return false
	}

	if d.fired {
		return false
	}
	if d.clock.Since(d.start) >= d.cfg.Time {
		d.fired = true
		return true
	}
	return false
}

// Progress returns how far the current dwell has advanced, from 0 to 1.
// It is 0 with no anchor and after the click has fired.
func (d *DwellDetector) Progress() float64 {
	if !d.hasAnchor || d.fired {
		return 0
	}
	p := float64(d.clock.Since(d.start)) / float64(d.cfg.Time)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Anchor returns the position the current dwell is measured from.
func (d *DwellDetector) Anchor() (detector.Point2D, bool) {
	return detector.Point2D{X: d.anchor.X, Y: d.anchor.Y}, d.hasAnchor
}

// Reset clears the anchor so the next position starts a new dwell.
func (d *DwellDetector) Reset() {
	d.anchor = r2.Vec{}
	d.hasAnchor = false
	d.start = time.Time{}
	d.fired = false
}
