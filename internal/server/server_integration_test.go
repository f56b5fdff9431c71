package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/airctrl/internal/store"
)

func TestAPI_BindingWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	srv := New(Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Create a binding
	createBody := `{"trigger": "gesture", "label": "Open_Palm", "plugin_name": "keyboard", "action_name": "keystroke", "config": {"key": "space"}}`
	resp, err := client.Post(ts.URL+"/api/bindings", "application/json", bytes.NewBufferString(createBody))
	if err != nil {
		t.Fatalf("POST /api/bindings error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.Label != "Open_Palm" {
		t.Errorf("created label = %s, want Open_Palm", created.Label)
	}

	// 2. The pipeline's lookup sees it
	matched, err := s.Bindings().Match(store.TriggerGesture, "Open_Palm")
	if err != nil || len(matched) != 1 {
		t.Fatalf("Match() = %d bindings, %v", len(matched), err)
	}

	// 3. List bindings
	resp, _ = client.Get(ts.URL + "/api/bindings")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/bindings status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var listed struct {
		Bindings []struct {
			ID string `json:"id"`
		} `json:"bindings"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Bindings) != 1 {
		t.Fatalf("len(bindings) = %d, want 1", len(listed.Bindings))
	}

	// 4. Disable it
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/bindings/"+created.ID, bytes.NewBufferString(`{"enabled": false}`))
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	if matched, _ := s.Bindings().Match(store.TriggerGesture, "Open_Palm"); len(matched) != 0 {
		t.Errorf("disabled binding still matches")
	}

	// 5. Delete binding
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/bindings/"+created.ID, nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()

	// 6. Verify deleted
	resp, _ = client.Get(ts.URL + "/api/bindings/" + created.ID)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
