package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/airctrl/internal/detector"
	"github.com/ayusman/airctrl/internal/gesture"
	"github.com/ayusman/airctrl/internal/interaction"
	"github.com/ayusman/airctrl/internal/plugin"
	"github.com/ayusman/airctrl/internal/pointer"
	"github.com/ayusman/airctrl/internal/store"
)

// Event is a trigger observed on one frame.
type Event struct {
	Trigger    store.Trigger
	Label      gesture.Label
	Pointer    detector.Point2D
	HasPointer bool
	Time       time.Time
}

// ActionResult reports the outcome of one bound action.
type ActionResult struct {
	Binding  *store.Binding
	Event    Event
	Response *plugin.Response
	Err      error
}

// Events derives the trigger events of frame f given the confirmed label
// and pinch state of the previous frame. A gesture event fires only when the
// confirmed label changes into a label other than None. A pinch event fires
// on the frame the pinch starts.
func Events(prevLabel gesture.Label, prevPinch bool, f interaction.Frame) []Event {
	base := Event{Label: f.Label, Pointer: f.Pointer, HasPointer: f.HasPointer, Time: f.Timestamp}

	var events []Event
	if f.Label != prevLabel && f.Label != gesture.LabelNone {
		ev := base
		ev.Trigger = store.TriggerGesture
		events = append(events, ev)
	}
	if f.Click {
		ev := base
		ev.Trigger = store.TriggerClick
		events = append(events, ev)
	}
	if f.Pinch && !prevPinch {
		ev := base
		ev.Trigger = store.TriggerPinch
		events = append(events, ev)
	}
	return events
}

// dispatch starts every enabled binding matching ev. Actions run in the
// background and are cancelled by Stop.
func (a *App) dispatch(ev Event) {
	if a.config.Store == nil {
		return
	}

	bindings, err := a.config.Store.Bindings().Match(ev.Trigger, string(ev.Label))
	if err != nil {
		log.Printf("Failed to look up bindings for %s: %v", ev.Trigger, err)
		return
	}

	for _, b := range bindings {
		req := a.request(b, ev)
		a.actions.Go(func() {
			a.report(a.execute(b, ev, req))
		})
	}
}

func (a *App) request(b *store.Binding, ev Event) *plugin.Request {
	req := &plugin.Request{
		Action:    b.ActionName,
		Trigger:   string(ev.Trigger),
		Timestamp: ev.Time.UnixMilli(),
		Config:    b.Config,
	}
	if ev.Label != gesture.LabelNone {
		req.Label = string(ev.Label)
	}
	if ev.HasPointer {
		p := a.mapper().Map(ev.Pointer)
		req.Pointer = &plugin.Point{X: p.X, Y: p.Y}
	}
	return req
}

func (a *App) mapper() pointer.Mapper {
	s := a.config.Settings
	return pointer.Mapper{
		FrameWidth:  s.Camera.Width,
		FrameHeight: s.Camera.Height,
		ViewWidth:   s.Screen.Width,
		ViewHeight:  s.Screen.Height,
	}
}

func (a *App) execute(b *store.Binding, ev Event, req *plugin.Request) ActionResult {
	result := ActionResult{Binding: b, Event: ev}

	p, err := a.pluginMgr.Resolve(b.PluginName, b.ActionName)
	if err != nil {
		result.Err = err
		return result
	}

	resp, err := a.pluginExec.Execute(a.ctx, p, req)
	if err != nil {
		result.Err = fmt.Errorf("run %s/%s: %w", b.PluginName, b.ActionName, err)
		return result
	}
	result.Response = resp
	if !resp.Success {
		result.Err = fmt.Errorf("%s/%s failed: %s", b.PluginName, b.ActionName, resp.Error)
	}
	return result
}

func (a *App) report(r ActionResult) {
	if r.Err != nil {
		log.Printf("Action for %s failed: %v", r.Event.Trigger, r.Err)
	} else {
		log.Printf("Executed %s/%s for %s %s", r.Binding.PluginName, r.Binding.ActionName, r.Event.Trigger, r.Event.Label)
	}

	a.mu.RLock()
	fn := a.onResult
	a.mu.RUnlock()
	if fn != nil {
		fn(r)
	}
}

// WaitActions blocks until every dispatched action has finished.
func (a *App) WaitActions() {
	a.actions.Wait()
}

func jsonString(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
