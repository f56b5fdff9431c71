package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/airctrl/internal/plugin"
	"github.com/ayusman/airctrl/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// newTestPlugins discovers a single "keyboard" plugin with keystroke and click actions.
func newTestPlugins(t *testing.T) *plugin.Manager {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "keyboard")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name":"keyboard","version":"1.0.0","executable":"keyboard","actions":["keystroke","click"]}`
	if err := os.WriteFile(filepath.Join(dir, "plugin.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}

	m := plugin.NewManager(root)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	return m
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBindingHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	b := &store.Binding{Trigger: store.TriggerGesture, Label: "Victory", PluginName: "keyboard", ActionName: "keystroke", Enabled: true}
	if err := s.Bindings().Create(b); err != nil {
		t.Fatalf("failed to create binding: %v", err)
	}

	rec := do(t, handler, http.MethodGet, "/api/bindings", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response listBindingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(response.Bindings))
	}
	if got := response.Bindings[0]; got.ID != b.ID || got.Label != "Victory" || string(got.Config) != "{}" {
		t.Errorf("unexpected binding %+v", got)
	}
}

func TestBindingHandler_List_Empty(t *testing.T) {
	rec := do(t, NewBindingHandler(newTestStore(t), nil), http.MethodGet, "/api/bindings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body := rec.Body.String(); body != "{\"bindings\":[]}\n" {
		t.Errorf("expected empty list, got %q", body)
	}
}

func TestBindingHandler_Create(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, newTestPlugins(t))

	rec := do(t, handler, http.MethodPost, "/api/bindings", createBindingRequest{
		Trigger:    "gesture",
		Label:      "Thumb_Up",
		PluginName: "keyboard",
		ActionName: "keystroke",
		Config:     json.RawMessage(`{"key":"space"}`),
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created bindingResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated ID")
	}
	if !created.Enabled {
		t.Error("bindings should default to enabled")
	}

	stored, err := s.Bindings().GetByID(created.ID)
	if err != nil {
		t.Fatalf("binding not stored: %v", err)
	}
	if stored.Label != "Thumb_Up" || string(stored.Config) != `{"key":"space"}` {
		t.Errorf("stored binding %+v", stored)
	}
}

func TestBindingHandler_Create_ClickDropsLabel(t *testing.T) {
	s := newTestStore(t)
	rec := do(t, NewBindingHandler(s, nil), http.MethodPost, "/api/bindings", createBindingRequest{
		Trigger:    "click",
		Label:      "Victory",
		PluginName: "keyboard",
		ActionName: "click",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created bindingResponse
	json.NewDecoder(rec.Body).Decode(&created)
	if created.Label != "" {
		t.Errorf("click binding kept label %q", created.Label)
	}
}

func TestBindingHandler_Create_Validation(t *testing.T) {
	handler := NewBindingHandler(newTestStore(t), newTestPlugins(t))

	tests := []struct {
		name string
		body any
	}{
		{name: "invalid json", body: "{not json"},
		{name: "unknown trigger", body: createBindingRequest{Trigger: "wave", PluginName: "keyboard", ActionName: "click"}},
		{name: "unknown label", body: createBindingRequest{Trigger: "gesture", Label: "Wave", PluginName: "keyboard", ActionName: "keystroke"}},
		{name: "None label", body: createBindingRequest{Trigger: "gesture", Label: "None", PluginName: "keyboard", ActionName: "keystroke"}},
		{name: "missing plugin", body: createBindingRequest{Trigger: "click", ActionName: "click"}},
		{name: "missing action", body: createBindingRequest{Trigger: "click", PluginName: "keyboard"}},
		{name: "unknown plugin", body: createBindingRequest{Trigger: "click", PluginName: "mouse", ActionName: "click"}},
		{name: "unsupported action", body: createBindingRequest{Trigger: "click", PluginName: "keyboard", ActionName: "launch"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, http.MethodPost, "/api/bindings", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
			}
			var resp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Error == "" {
				t.Errorf("expected JSON error body, got %q", rec.Body.String())
			}
		})
	}
}

func TestBindingHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	b := &store.Binding{Trigger: store.TriggerPinch, PluginName: "keyboard", ActionName: "click", Enabled: true}
	if err := s.Bindings().Create(b); err != nil {
		t.Fatal(err)
	}

	rec := do(t, handler, http.MethodGet, "/api/bindings/"+b.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got bindingResponse
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Trigger != "pinch" || got.ActionName != "click" {
		t.Errorf("unexpected binding %+v", got)
	}

	if rec := do(t, handler, http.MethodGet, "/api/bindings/nonexistent", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestBindingHandler_Update(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	b := &store.Binding{Trigger: store.TriggerGesture, Label: "Victory", PluginName: "keyboard", ActionName: "keystroke", Enabled: true}
	if err := s.Bindings().Create(b); err != nil {
		t.Fatal(err)
	}

	disabled := false
	rec := do(t, handler, http.MethodPut, "/api/bindings/"+b.ID, updateBindingRequest{
		Label:   "Open_Palm",
		Enabled: &disabled,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	stored, err := s.Bindings().GetByID(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Label != "Open_Palm" || stored.Enabled || stored.PluginName != "keyboard" {
		t.Errorf("stored binding %+v", stored)
	}

	if rec := do(t, handler, http.MethodPut, "/api/bindings/"+b.ID, updateBindingRequest{Label: "Wave"}); rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for bad label, got %d", http.StatusBadRequest, rec.Code)
	}
	if rec := do(t, handler, http.MethodPut, "/api/bindings/nonexistent", updateBindingRequest{}); rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestBindingHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	b := &store.Binding{Trigger: store.TriggerClick, PluginName: "keyboard", ActionName: "click", Enabled: true}
	if err := s.Bindings().Create(b); err != nil {
		t.Fatal(err)
	}

	if rec := do(t, handler, http.MethodDelete, "/api/bindings/"+b.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if _, err := s.Bindings().GetByID(b.ID); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if rec := do(t, handler, http.MethodDelete, "/api/bindings/"+b.ID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestBindingHandler_MethodNotAllowed(t *testing.T) {
	handler := NewBindingHandler(newTestStore(t), nil)

	if rec := do(t, handler, http.MethodPatch, "/api/bindings", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("collection PATCH: expected %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
	if rec := do(t, handler, http.MethodPost, "/api/bindings/some-id", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("item POST: expected %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
