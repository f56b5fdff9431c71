// Package gesture turns per-frame hand landmarks into discrete gesture labels.
//
// Classification is stateless per frame: finger bend states are derived from
// joint angles, and a fixed decision order maps them to a Label. The only
// cross-frame memory lives in Stabilizer, which debounces the label stream.
package gesture

import (
	"errors"
	"fmt"
)

// Config holds the classifier and stabilizer thresholds.
// Distances are in pixels, angles in degrees.
type Config struct {
	// PinchThresholdPx is the thumb-tip/index-tip distance below which the hand pinches.
	PinchThresholdPx float64 `json:"pinch_threshold_px"`

	// AngleThreshold is the joint angle below which a joint counts as bent.
	AngleThreshold float64 `json:"angle_threshold"`

	// ThumbBaseOffset is added to AngleThreshold for the thumb's first joint,
	// which bends through a shallower angle than the other fingers.
	ThumbBaseOffset float64 `json:"thumb_base_offset"`

	// FingerJointOffset is added to AngleThreshold for the second joint of
	// the index, middle, ring and pinky fingers.
	FingerJointOffset float64 `json:"finger_joint_offset"`

	// FistThumbProximityPx is the maximum thumb-tip/index-MCP distance of a fist.
	FistThumbProximityPx float64 `json:"fist_thumb_proximity_px"`

	// OpenPalmSpreadPx is the minimum thumb-base/pinky-base distance of an open palm.
	OpenPalmSpreadPx float64 `json:"open_palm_spread_px"`

	// StabilityWindow is the number of recent frames the Stabilizer votes over.
	StabilityWindow int `json:"gesture_stability"`

	// MajorityRatio is the share of the window a label needs to be confirmed.
	MajorityRatio float64 `json:"majority_ratio"`
}

// DefaultConfig returns a Config with the tuned default values.
func DefaultConfig() Config {
	return Config{
		PinchThresholdPx:     40,
		AngleThreshold:       30,
		ThumbBaseOffset:      20,
		FingerJointOffset:    -10,
		FistThumbProximityPx: 50,
		OpenPalmSpreadPx:     100,
		StabilityWindow:      3,
		MajorityRatio:        0.6,
	}
}

// ErrInvalidConfig is wrapped by Validate failures.
var ErrInvalidConfig = errors.New("invalid gesture config")

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.PinchThresholdPx <= 0:
		return fmt.Errorf("%w: pinch_threshold_px must be positive, got %g", ErrInvalidConfig, c.PinchThresholdPx)
	case c.AngleThreshold <= 0 || c.AngleThreshold >= 180:
		return fmt.Errorf("%w: angle_threshold must be in (0,180), got %g", ErrInvalidConfig, c.AngleThreshold)
	case c.FistThumbProximityPx <= 0:
		return fmt.Errorf("%w: fist_thumb_proximity_px must be positive, got %g", ErrInvalidConfig, c.FistThumbProximityPx)
	case c.OpenPalmSpreadPx <= 0:
		return fmt.Errorf("%w: open_palm_spread_px must be positive, got %g", ErrInvalidConfig, c.OpenPalmSpreadPx)
	case c.StabilityWindow < 1:
		return fmt.Errorf("%w: gesture_stability must be at least 1, got %d", ErrInvalidConfig, c.StabilityWindow)
	case c.MajorityRatio <= 0 || c.MajorityRatio > 1:
		return fmt.Errorf("%w: majority_ratio must be in (0,1], got %g", ErrInvalidConfig, c.MajorityRatio)
	}
	return nil
}
