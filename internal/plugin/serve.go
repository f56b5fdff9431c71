package plugin

import (
	"encoding/json"
	"fmt"
	"io"
)

// Handler runs one action inside a plugin process.
type Handler func(req *Request) error

// Serve is the plugin side of the protocol. It decodes one Request from
// r, runs the handler registered for its action and encodes the
// Response to w. A failing handler becomes an unsuccessful Response; the
// returned error only reports a failure to write it.
func Serve(r io.Reader, w io.Writer, handlers map[string]Handler) error {
	resp := handle(r, handlers)
	return json.NewEncoder(w).Encode(resp)
}

func handle(r io.Reader, handlers map[string]Handler) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Response{Error: fmt.Sprintf("failed to decode request: %v", err)}
	}

	handler, ok := handlers[req.Action]
	if !ok {
		return Response{Error: fmt.Sprintf("unknown action: %s", req.Action)}
	}

	if err := handler(&req); err != nil {
		return Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)}
	}
	return Response{Success: true}
}

// DecodeConfig unmarshals the binding config into v, falling back to
// Params when no config was sent.
func (r *Request) DecodeConfig(v any) error {
	raw := r.Config
	if len(raw) == 0 || string(raw) == "null" {
		raw = r.Params
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}
