// Package app provides the main application logic for the AirCtrl hand
// gesture controller: capture, detection, tracking and action dispatch.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ayusman/airctrl/internal/capture"
	"github.com/ayusman/airctrl/internal/config"
	"github.com/ayusman/airctrl/internal/detector"
	"github.com/ayusman/airctrl/internal/gesture"
	"github.com/ayusman/airctrl/internal/interaction"
	"github.com/ayusman/airctrl/internal/plugin"
	"github.com/ayusman/airctrl/internal/store"
	"github.com/ayusman/airctrl/internal/timeutil"
)

// Config holds the dependencies of an App. Only Settings is required.
type Config struct {
	Settings config.Config
	Store    *store.Store
	Clock    timeutil.Clock

	// Camera and Detector override the devices built from Settings.
	Camera   capture.Camera
	Detector detector.Detector
}

// App is the main application that turns camera frames into gesture
// events and executes the plugin actions bound to them.
type App struct {
	config     Config
	clock      timeutil.Clock
	camera     capture.Camera
	motion     *capture.MotionDetector
	gate       *capture.Gate
	detector   detector.Detector
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	mu        sync.RWMutex
	tuning    config.Tuning
	tracker   *interaction.Tracker
	enabled   bool
	last      interaction.Frame
	prevLabel gesture.Label
	prevPinch bool
	subs      map[int]func(interaction.Frame)
	nextSub   int
	onLabel   func(gesture.Label)
	onMode    func(capture.Mode)
	onResult  func(ActionResult)

	ctx     context.Context
	cancel  context.CancelFunc
	actions sync.WaitGroup
	stopCh  chan struct{}
	done    chan struct{}
}

// New creates a new App. Tuning persisted in the store overrides the
// tuning in cfg.Settings; an unreadable stored document is logged and
// ignored.
func New(cfg Config) *App {
	s := cfg.Settings
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	motionThreshold := s.Camera.MotionThreshold
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // 1% pixel change
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		config:     cfg,
		clock:      clock,
		camera:     cfg.Camera,
		motion:     capture.NewMotionDetector(motionThreshold),
		gate:       capture.NewGate(gateConfig(s.Camera), clock),
		detector:   cfg.Detector,
		pluginMgr:  plugin.NewManager(s.PluginDir),
		pluginExec: plugin.NewExecutor(plugin.DefaultTimeout),
		tuning:     s.Tuning,
		prevLabel:  gesture.LabelNone,
		last:       interaction.Frame{Raw: gesture.LabelNone, Label: gesture.LabelNone},
		subs:       make(map[int]func(interaction.Frame)),
		ctx:        ctx,
		cancel:     cancel,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(capture.Config{
			DeviceID: s.Camera.DeviceID,
			Width:    s.Camera.Width,
			Height:   s.Camera.Height,
			FPS:      a.gate.FPS(),
			Mirror:   s.Camera.Mirror,
		})
	}

	if a.detector == nil {
		// Try MediaPipe first, fall back to mock detector
		if mp, err := detector.NewMediaPipeDetector(s.Detector.Detector()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	if err := a.loadStoredTuning(); err != nil {
		log.Printf("Ignoring stored tuning: %v", err)
	}
	a.tracker = interaction.NewTracker(a.trackerConfig(a.tuning), clock)

	return a
}

func (a *App) trackerConfig(t config.Tuning) interaction.Config {
	c := t.Tracker(detector.SlotPrimary)
	c.Targets = a.config.Settings.Targets
	return c
}

func gateConfig(c config.CameraConfig) capture.GateConfig {
	return capture.GateConfig{
		IdleFPS:     c.IdleFPS,
		ActiveFPS:   c.ActiveFPS,
		IdleTimeout: c.IdleTimeout.Std(),
	}
}

func (a *App) loadStoredTuning() error {
	if a.config.Store == nil {
		return nil
	}
	doc, err := a.config.Store.Settings().Get(store.SettingTuning)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	merged, err := a.tuning.Merge([]byte(doc))
	if err != nil {
		return err
	}
	a.tuning = merged
	log.Println("Loaded stored tuning")
	return nil
}

// Tuning returns the active recognition settings.
func (a *App) Tuning() config.Tuning {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tuning
}

// UpdateTuning merges a partial JSON document into the active tuning,
// applies it and persists the result. Tracking state restarts.
func (a *App) UpdateTuning(patch []byte) (config.Tuning, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	merged, err := a.tuning.Merge(patch)
	if err != nil {
		return a.tuning, err
	}

	if a.config.Store != nil {
		doc, err := jsonString(merged)
		if err != nil {
			return a.tuning, err
		}
		if err := a.config.Store.Settings().Set(store.SettingTuning, doc); err != nil {
			return a.tuning, fmt.Errorf("persist tuning: %w", err)
		}
	}

	a.tuning = merged
	a.tracker = interaction.NewTracker(a.trackerConfig(merged), a.clock)
	a.prevLabel = gesture.LabelNone
	a.prevPinch = false
	log.Println("Applied new tuning")
	return merged, nil
}

// SetEnabled enables or disables gesture detection. Disabling clears the
// tracking state and drops the capture back to idle mode.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled && !enabled {
		a.resetLocked()
		a.motion.Reset()
		a.gate.Force(capture.ModeIdle)
		a.camera.SetFPS(a.gate.FPS())
	}
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Reset clears the tracker and the edge state used for dispatch.
func (a *App) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

func (a *App) resetLocked() {
	a.tracker.Reset()
	a.prevLabel = gesture.LabelNone
	a.prevPinch = false
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Subscribe registers fn to receive every processed frame. The returned
// function removes the subscription. fn runs on the frame loop and must not
// block.
func (a *App) Subscribe(fn func(interaction.Frame)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

// OnLabel sets the callback invoked when the confirmed label changes to a
// label other than None.
func (a *App) OnLabel(fn func(gesture.Label)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onLabel = fn
}

// OnModeChange sets the callback invoked when the capture gate switches
// between idle and active.
func (a *App) OnModeChange(fn func(capture.Mode)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onMode = fn
}

// OnActionResult sets the callback invoked after each bound action runs.
func (a *App) OnActionResult(fn func(ActionResult)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onResult = fn
}

// LastFrame returns the most recently processed frame.
func (a *App) LastFrame() interaction.Frame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start opens the camera and begins the detection loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.gate.FPS())

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection loop, cancels and waits for running actions and
// releases the camera and detector. A stopped App cannot be restarted.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	a.cancel()
	a.actions.Wait()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Mode returns the current gate mode.
func (a *App) Mode() capture.Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gate.Mode()
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
