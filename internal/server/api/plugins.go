package api

import (
	"net/http"

	"github.com/ayusman/airctrl/internal/plugin"
)

// PluginHandler lists the discovered plugins.
type PluginHandler struct {
	plugins *plugin.Manager
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(m *plugin.Manager) *PluginHandler {
	return &PluginHandler{plugins: m}
}

type listPluginsResponse struct {
	Plugins []plugin.Manifest `json:"plugins"`
}

// ServeHTTP handles GET /api/plugins.
func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	plugins := h.plugins.List()
	response := listPluginsResponse{Plugins: make([]plugin.Manifest, 0, len(plugins))}
	for _, p := range plugins {
		response.Plugins = append(response.Plugins, p.Manifest)
	}
	writeJSON(w, http.StatusOK, response)
}
