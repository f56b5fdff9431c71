// Package server provides the HTTP server for AirCtrl: health, status,
// settings and bindings APIs, a websocket frame stream and the web UI.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/airctrl/internal/capture"
	"github.com/ayusman/airctrl/internal/interaction"
	"github.com/ayusman/airctrl/internal/plugin"
	"github.com/ayusman/airctrl/internal/server/api"
	"github.com/ayusman/airctrl/internal/store"
)

// Controller is the running application as seen by the server.
type Controller interface {
	api.TuningService
	FrameSource
	LastFrame() interaction.Frame
	IsEnabled() bool
	SetEnabled(enabled bool)
	Mode() capture.Mode
}

// Config holds the server configuration. Routes whose dependency is nil
// are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       Controller
	Plugins   *plugin.Manager
}

// Server represents the HTTP server for the AirCtrl application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	events *EventsHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		bindings := api.NewBindingHandler(s.config.Store, s.config.Plugins)
		s.mux.Handle("/api/bindings", bindings)
		s.mux.Handle("/api/bindings/", bindings)
	}

	if s.config.Plugins != nil {
		s.mux.Handle("/api/plugins", api.NewPluginHandler(s.config.Plugins))
	}

	if s.config.App != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.App))
		s.events = NewEventsHandler(s.config.App)
		s.mux.Handle("/api/events", s.events)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	writeJSON(w, http.StatusOK, response)
}

type statusResponse struct {
	Enabled bool              `json:"enabled"`
	Mode    string            `json:"mode"`
	Frame   interaction.Frame `json:"frame"`
}

type statusRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleStatus returns the latest frame on GET and toggles detection on PUT.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	app := s.config.App

	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "enabled is required"})
			return
		}
		app.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Enabled: app.IsEnabled(),
		Mode:    app.Mode().String(),
		Frame:   app.LastFrame(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Close disconnects websocket clients.
func (s *Server) Close() {
	if s.events != nil {
		s.events.Close()
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
