// Package tray provides the macOS menu bar item for AirCtrl.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the menu bar item. It shows whether control is enabled, the
// capture mode and the last confirmed gesture.
type Tray struct {
	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()

	mu        sync.RWMutex
	enabled   bool
	mode      string
	lastLabel string

	menuToggle *systray.MenuItem
	menuMode   *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a Tray that starts enabled in idle mode.
func New() *Tray {
	return &Tray{
		enabled: true,
		mode:    "idle",
	}
}

// OnToggle sets the callback run after the user flips the enabled item.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback run when "Open Settings" is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the menu bar loop. It blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit stops the menu bar loop.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("AirCtrl")
	systray.SetTooltip("AirCtrl hand gesture control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand control")
	systray.AddSeparator()
	t.menuMode = systray.AddMenuItem(modeTitle(t.mode), "Capture mode")
	t.menuMode.Disable()
	t.menuLast = systray.AddMenuItem(lastTitle(t.lastLabel), "Last confirmed gesture")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit AirCtrl")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.toggle()
			case <-menuSettings.ClickedCh:
				if fn := t.callback(func() func() { return t.onSettings }); fn != nil {
					fn()
				}
			case <-menuQuit.ClickedCh:
				if fn := t.callback(func() func() { return t.onQuit }); fn != nil {
					fn()
				}
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) callback(get func() func()) func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return get()
}

// toggle flips the enabled state and runs the toggle callback outside
// the lock.
func (t *Tray) toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	fn := t.onToggle
	t.mu.Unlock()

	if fn != nil {
		fn(enabled)
	}
}

// SetEnabled reflects an enabled change made elsewhere, such as the
// status API. It does not run the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetMode shows the capture mode.
func (t *Tray) SetMode(mode string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
	if t.menuMode != nil {
		t.menuMode.SetTitle(modeTitle(mode))
	}
}

// SetLastGesture shows the last confirmed gesture label.
func (t *Tray) SetLastGesture(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastLabel = label
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(label))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// LastGesture returns the label last passed to SetLastGesture.
func (t *Tray) LastGesture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastLabel
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func modeTitle(mode string) string {
	return "Mode: " + mode
}

func lastTitle(label string) string {
	if label == "" {
		return "Last: none"
	}
	return "Last: " + label
}
