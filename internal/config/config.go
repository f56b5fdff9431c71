// Package config loads the application configuration from defaults, an
// optional JSON file and AIRCTRL_ environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ayusman/airctrl/internal/detector"
	"github.com/ayusman/airctrl/internal/gesture"
	"github.com/ayusman/airctrl/internal/interaction"
	"github.com/ayusman/airctrl/internal/pointer"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "AIRCTRL_"

// maxFileSize bounds config files.
const maxFileSize = 1 * 1024 * 1024

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Duration is a time.Duration that writes as a string like "800ms". It reads
// either that form or a bare number of seconds, in JSON and environment
// variables.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	if secs, err := strconv.ParseFloat(string(b), 64); err == nil {
		return d.setSeconds(secs)
	}
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// UnmarshalJSON accepts a duration string or a JSON number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.UnmarshalText([]byte(s))
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("parse duration %s: %w", b, err)
	}
	return d.setSeconds(secs)
}

func (d *Duration) setSeconds(secs float64) error {
	if math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) > math.MaxInt64/float64(time.Second) {
		return fmt.Errorf("parse duration: %g seconds out of range", secs)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// Tuning holds the recognition knobs. It is the document stored in the
// settings table and served by the settings API.
type Tuning struct {
	PinchThresholdPx     float64  `json:"pinch_threshold_px" env:"PINCH_THRESHOLD_PX"`
	AngleThreshold       float64  `json:"angle_threshold" env:"ANGLE_THRESHOLD"`
	ThumbBaseOffset      float64  `json:"thumb_base_offset" env:"THUMB_BASE_OFFSET"`
	FingerJointOffset    float64  `json:"finger_joint_offset" env:"FINGER_JOINT_OFFSET"`
	FistThumbProximityPx float64  `json:"fist_thumb_proximity_px" env:"FIST_THUMB_PROXIMITY_PX"`
	OpenPalmSpreadPx     float64  `json:"open_palm_spread_px" env:"OPEN_PALM_SPREAD_PX"`
	GestureStability     int      `json:"gesture_stability" env:"GESTURE_STABILITY"`
	MajorityRatio        float64  `json:"majority_ratio" env:"MAJORITY_RATIO"`
	DwellTime            Duration `json:"dwell_time" env:"DWELL_TIME"`
	DwellTolerancePx     float64  `json:"dwell_tolerance_px" env:"DWELL_TOLERANCE_PX"`
	PointerSource        string   `json:"pointer_source" env:"POINTER_SOURCE"`
}

// DefaultTuning returns the default recognition knobs.
func DefaultTuning() Tuning {
	g := gesture.DefaultConfig()
	d := pointer.DefaultDwellConfig()
	return Tuning{
		PinchThresholdPx:     g.PinchThresholdPx,
		AngleThreshold:       g.AngleThreshold,
		ThumbBaseOffset:      g.ThumbBaseOffset,
		FingerJointOffset:    g.FingerJointOffset,
		FistThumbProximityPx: g.FistThumbProximityPx,
		OpenPalmSpreadPx:     g.OpenPalmSpreadPx,
		GestureStability:     g.StabilityWindow,
		MajorityRatio:        g.MajorityRatio,
		DwellTime:            Duration(d.Time),
		DwellTolerancePx:     d.TolerancePx,
		PointerSource:        string(interaction.SourceIndexTip),
	}
}

// Gesture returns the classifier and stabilizer settings.
func (t Tuning) Gesture() gesture.Config {
	return gesture.Config{
		PinchThresholdPx:     t.PinchThresholdPx,
		AngleThreshold:       t.AngleThreshold,
		ThumbBaseOffset:      t.ThumbBaseOffset,
		FingerJointOffset:    t.FingerJointOffset,
		FistThumbProximityPx: t.FistThumbProximityPx,
		OpenPalmSpreadPx:     t.OpenPalmSpreadPx,
		StabilityWindow:      t.GestureStability,
		MajorityRatio:        t.MajorityRatio,
	}
}

// Dwell returns the dwell-click settings.
func (t Tuning) Dwell() pointer.DwellConfig {
	return pointer.DwellConfig{
		Time:        t.DwellTime.Std(),
		TolerancePx: t.DwellTolerancePx,
	}
}

// Tracker returns the settings of a tracker following slot.
func (t Tuning) Tracker(slot detector.Slot) interaction.Config {
	source, err := interaction.ParsePointerSource(t.PointerSource)
	if err != nil {
		source = interaction.SourceIndexTip
	}
	return interaction.Config{
		Gesture: t.Gesture(),
		Dwell:   t.Dwell(),
		Source:  source,
		Slot:    slot,
	}
}

// Validate checks every knob.
func (t Tuning) Validate() error {
	if err := t.Gesture().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := t.Dwell().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := interaction.ParsePointerSource(t.PointerSource); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Merge applies a partial JSON document on top of t. Fields absent from
// data keep their current values. The result is validated.
func (t Tuning) Merge(data []byte) (Tuning, error) {
	merged := t
	if err := json.Unmarshal(data, &merged); err != nil {
		return t, fmt.Errorf("%w: parse tuning: %w", ErrInvalid, err)
	}
	if err := merged.Validate(); err != nil {
		return t, err
	}
	return merged, nil
}

// CameraConfig holds the capture settings.
type CameraConfig struct {
	DeviceID        int      `json:"device_id" env:"DEVICE_ID"`
	Width           int      `json:"width" env:"WIDTH"`
	Height          int      `json:"height" env:"HEIGHT"`
	Mirror          bool     `json:"mirror" env:"MIRROR"`
	MotionThreshold float64  `json:"motion_threshold" env:"MOTION_THRESHOLD"`
	IdleFPS         int      `json:"idle_fps" env:"IDLE_FPS"`
	ActiveFPS       int      `json:"active_fps" env:"ACTIVE_FPS"`
	IdleTimeout     Duration `json:"idle_timeout" env:"IDLE_TIMEOUT"`
}

// DetectorConfig holds the hand detector settings.
type DetectorConfig struct {
	MaxHands        int      `json:"max_hands" env:"MAX_HANDS"`
	MinConfidence   float64  `json:"min_confidence" env:"MIN_CONFIDENCE"`
	MinTrackingConf float64  `json:"min_tracking_confidence" env:"MIN_TRACKING_CONFIDENCE"`
	ScriptPath      string   `json:"script_path" env:"SCRIPT_PATH"`
	Python          string   `json:"python" env:"PYTHON"`
	IdleTimeout     Duration `json:"idle_timeout" env:"IDLE_TIMEOUT"`
}

// Detector converts to the detector package's config.
func (c DetectorConfig) Detector() detector.Config {
	return detector.Config{
		MaxHands:        c.MaxHands,
		MinConfidence:   c.MinConfidence,
		MinTrackingConf: c.MinTrackingConf,
		ScriptPath:      c.ScriptPath,
		Interpreter:     c.Python,
		IdleTimeout:     c.IdleTimeout.Std(),
	}
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr   string `json:"addr" env:"ADDR"`
	WebDir string `json:"web_dir" env:"WEB_DIR"`
}

// ScreenConfig is the size of the display plugin pointer positions are
// mapped onto. A zero size leaves positions in camera frame pixels.
type ScreenConfig struct {
	Width  int `json:"width" env:"WIDTH"`
	Height int `json:"height" env:"HEIGHT"`
}

// Config is the complete application configuration.
type Config struct {
	Tuning   Tuning         `json:"tuning"`
	Camera   CameraConfig   `json:"camera" envPrefix:"CAMERA_"`
	Detector DetectorConfig `json:"detector" envPrefix:"DETECTOR_"`
	Server   ServerConfig   `json:"server" envPrefix:"SERVER_"`
	Screen   ScreenConfig   `json:"screen" envPrefix:"SCREEN_"`
	// Targets are hover areas in camera frame pixels, reported on each frame.
	Targets   []pointer.Target `json:"targets"`
	DataDir   string           `json:"data_dir" env:"DATA_DIR"`
	PluginDir string           `json:"plugin_dir" env:"PLUGIN_DIR"`
	Tray      bool             `json:"tray" env:"TRAY"`
}

// Default returns the built-in configuration.
func Default() Config {
	det := detector.DefaultConfig()
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".airctrl")
	return Config{
		Tuning: DefaultTuning(),
		Camera: CameraConfig{
			DeviceID:        0,
			Width:           1280,
			Height:          720,
			Mirror:          true,
			MotionThreshold: 1.0,
			IdleFPS:         5,
			ActiveFPS:       15,
			IdleTimeout:     Duration(2 * time.Second),
		},
		Detector: DetectorConfig{
			MaxHands:        det.MaxHands,
			MinConfidence:   det.MinConfidence,
			MinTrackingConf: det.MinTrackingConf,
			ScriptPath:      det.ScriptPath,
			IdleTimeout:     Duration(det.IdleTimeout),
		},
		Server: ServerConfig{
			Addr:   ":8080",
			WebDir: "web",
		},
		DataDir:   dataDir,
		PluginDir: filepath.Join(dataDir, "plugins"),
		Tray:      true,
	}
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := c.Tuning.Validate(); err != nil {
		return err
	}
	switch {
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return fmt.Errorf("%w: camera size must be positive, got %dx%d", ErrInvalid, c.Camera.Width, c.Camera.Height)
	case c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0:
		return fmt.Errorf("%w: camera fps must be positive", ErrInvalid)
	case c.Camera.IdleTimeout <= 0:
		return fmt.Errorf("%w: camera idle_timeout must be positive", ErrInvalid)
	case c.Detector.MaxHands < 1:
		return fmt.Errorf("%w: detector max_hands must be at least 1, got %d", ErrInvalid, c.Detector.MaxHands)
	case c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1:
		return fmt.Errorf("%w: detector min_confidence must be in [0,1], got %g", ErrInvalid, c.Detector.MinConfidence)
	case c.Screen.Width < 0 || c.Screen.Height < 0:
		return fmt.Errorf("%w: screen size must not be negative", ErrInvalid)
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server addr is empty", ErrInvalid)
	}
	for _, t := range c.Targets {
		if t.Name == "" || t.Radius <= 0 {
			return fmt.Errorf("%w: target %q needs a name and a positive radius", ErrInvalid, t.Name)
		}
	}
	return nil
}

// LoadFile reads a JSON config file on top of the defaults. The file must
// have a .json extension and be at most 1MB. Fields omitted from the file
// keep their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := cfg.applyFile(path); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return nil
}

// Load builds the configuration from defaults, the optional file at path
// and environment variables, in that order. A nil environ reads the process
// environment.
func Load(path string, environ map[string]string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
