// Package plugin discovers and runs action plugins. A plugin is an
// executable that reads one JSON Request on stdin and writes one JSON
// Response on stdout.
package plugin

import (
	"encoding/json"
	"slices"
)

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Supports reports whether the plugin declares action.
func (m Manifest) Supports(action string) bool {
	return slices.Contains(m.Actions, action)
}

// Point is a pointer position in screen pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action string `json:"action"`
	// Trigger is "gesture", "click" or "pinch".
	Trigger string `json:"trigger"`
	// Label is the confirmed gesture label at the time of the event.
	Label string `json:"label,omitempty"`
	// Pointer is set when a hand position was available.
	Pointer   *Point          `json:"pointer,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Config    json.RawMessage `json:"config"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
