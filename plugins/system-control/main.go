// Package main provides a system control plugin for macOS.
// It handles volume, brightness and media keys via AppleScript.
package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"

	"github.com/ayusman/airctrl/internal/plugin"
)

const defaultVolumeStep = 10

// VolumeConfig is the binding config for volume-up and volume-down.
type VolumeConfig struct {
	Step int `json:"step"`
}

// Key codes for the media and brightness keys.
const (
	keyBrightnessUp   = 144
	keyBrightnessDown = 145
	keyPlayPause      = 100
	keyNext           = 101
	keyPrev           = 98
)

var handlers = map[string]plugin.Handler{
	"volume-up":        volumeChange(1),
	"volume-down":      volumeChange(-1),
	"volume-mute":      script(`set volume output muted (not (output muted of (get volume settings)))`),
	"brightness-up":    keyCode(keyBrightnessUp),
	"brightness-down":  keyCode(keyBrightnessDown),
	"media-play-pause": keyCode(keyPlayPause),
	"media-next":       keyCode(keyNext),
	"media-prev":       keyCode(keyPrev),
}

func main() {
	if err := plugin.Serve(os.Stdin, os.Stdout, handlers); err != nil {
		log.Fatal(err)
	}
}

func volumeChange(sign int) plugin.Handler {
	return func(req *plugin.Request) error {
		c := VolumeConfig{Step: defaultVolumeStep}
		if err := req.DecodeConfig(&c); err != nil {
			return err
		}
		if c.Step <= 0 || c.Step > 100 {
			return fmt.Errorf("step must be in 1..100, got %d", c.Step)
		}
		return runAppleScript(volumeScript(sign * c.Step))
	}
}

func volumeScript(delta int) string {
	return fmt.Sprintf(`set volume output volume ((output volume of (get volume settings)) + %d)`, delta)
}

func keyCode(code int) plugin.Handler {
	return script(fmt.Sprintf(`tell application "System Events" to key code %d`, code))
}

func script(s string) plugin.Handler {
	return func(*plugin.Request) error {
		return runAppleScript(s)
	}
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
