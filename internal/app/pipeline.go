package app

import (
	"log"
	"time"

	"github.com/ayusman/airctrl/internal/capture"
	"github.com/ayusman/airctrl/internal/detector"
	"github.com/ayusman/airctrl/internal/gesture"
	"github.com/ayusman/airctrl/internal/interaction"
)

// runPipeline is the frame loop. It samples the camera at the gate's rate:
//
//  1. Start in idle mode (idle fps), motion detection only.
//  2. On motion, switch to active mode (active fps) and run hand detection.
//  3. Feed the hands to the tracker and dispatch the resulting events.
//  4. After the idle timeout without motion, return to idle and clear the
//     tracking state.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	a.mu.RLock()
	interval := a.gate.Interval()
	a.mu.RUnlock()

	ticker := a.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C():
			if !a.IsEnabled() {
				continue
			}
			// the interval also changes when disabling forces idle mode
			if next := a.step(); next != interval {
				ticker.Reset(next)
				interval = next
			}
		}
	}
}

// step reads and processes one frame. It returns the frame interval of the
// gate's current mode.
func (a *App) step() time.Duration {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		log.Printf("Error reading frame: %v", err)
		a.mu.RLock()
		defer a.mu.RUnlock()
		return a.gate.Interval()
	}
	defer frame.Close()

	motion, _ := a.motion.Detect(frame)

	a.mu.Lock()
	mode, changed := a.gate.Observe(motion)
	interval, fps := a.gate.Interval(), a.gate.FPS()
	d, onMode := a.detector, a.onMode
	a.mu.Unlock()

	if changed {
		a.camera.SetFPS(fps)
		log.Printf("Switched to %s mode", mode)
		if onMode != nil {
			onMode(mode)
		}
		if mode == capture.ModeIdle {
			a.ProcessHands(nil)
		}
	}

	if mode != capture.ModeActive || d == nil {
		return interval
	}

	hands, err := d.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		// a failed frame counts as no hand
		a.ProcessHands(nil)
		return interval
	}

	a.ProcessHands(hands)
	return interval
}

// ProcessHands runs one frame of detected hands through the tracker,
// publishes the resulting frame to subscribers and dispatches the bound
// actions of any events it produced. It is the per-frame entry point of the
// loop and is safe to call directly.
func (a *App) ProcessHands(hands []detector.HandLandmarks) interaction.Frame {
	a.mu.Lock()
	f := a.tracker.Process(hands)
	events := Events(a.prevLabel, a.prevPinch, f)
	labelChanged := f.Label != a.prevLabel
	a.prevLabel = f.Label
	a.prevPinch = f.Pinch
	a.last = f

	subs := make([]func(interaction.Frame), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	onLabel := a.onLabel
	a.mu.Unlock()

	for _, fn := range subs {
		fn(f)
	}

	if labelChanged && f.Label != gesture.LabelNone {
		log.Printf("Gesture confirmed: %s", f.Label)
		if onLabel != nil {
			onLabel(f.Label)
		}
	}

	for _, ev := range events {
		a.dispatch(ev)
	}
	return f
}
