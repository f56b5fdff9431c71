// Package main provides a keyboard and mouse plugin for macOS.
// It sends keystrokes and clicks via AppleScript.
package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/ayusman/airctrl/internal/plugin"
)

// KeystrokeConfig defines the binding config for keystroke and shortcut actions.
type KeystrokeConfig struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// ClickConfig optionally overrides the click position.
type ClickConfig struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

var handlers = map[string]plugin.Handler{
	"keystroke": handleKeystroke,
	"shortcut":  handleKeystroke,
	"click":     handleClick,
}

func main() {
	if err := plugin.Serve(os.Stdin, os.Stdout, handlers); err != nil {
		log.Fatal(err)
	}
}

func handleKeystroke(req *plugin.Request) error {
	var c KeystrokeConfig
	if err := req.DecodeConfig(&c); err != nil {
		return err
	}
	if c.Key == "" {
		return errors.New("key is required")
	}
	return runAppleScript(buildKeystrokeScript(c.Key, c.Modifiers))
}

func handleClick(req *plugin.Request) error {
	var c ClickConfig
	if err := req.DecodeConfig(&c); err != nil {
		return err
	}
	x, y, err := clickPosition(req.Pointer, c)
	if err != nil {
		return err
	}
	return runAppleScript(buildClickScript(x, y))
}

// clickPosition prefers a fixed position from the config over the pointer.
func clickPosition(p *plugin.Point, c ClickConfig) (int, int, error) {
	if c.X != nil && c.Y != nil {
		return int(math.Round(*c.X)), int(math.Round(*c.Y)), nil
	}
	if p == nil {
		return 0, 0, errors.New("no pointer position")
	}
	return int(math.Round(p.X)), int(math.Round(p.Y)), nil
}

// buildKeystrokeScript generates an AppleScript for the given key and modifiers.
func buildKeystrokeScript(key string, modifiers []string) string {
	key = strings.ReplaceAll(key, `"`, `\"`)

	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, key, strings.Join(appleModifiers, ", "))
}

func buildClickScript(x, y int) string {
	return fmt.Sprintf(`tell application "System Events" to click at {%d, %d}`, x, y)
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
