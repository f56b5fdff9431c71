package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/ayusman/airctrl/internal/config"
)

// maxSettingsBody bounds PUT /api/settings bodies.
const maxSettingsBody = 64 * 1024

// TuningService reads and updates the live recognition tuning.
type TuningService interface {
	Tuning() config.Tuning
	UpdateTuning(patch []byte) (config.Tuning, error)
}

// SettingsHandler serves /api/settings.
type SettingsHandler struct {
	tuning TuningService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(t TuningService) *SettingsHandler {
	return &SettingsHandler{tuning: t}
}

// ServeHTTP returns the tuning on GET and applies a partial tuning document
// on PUT.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.tuning.Tuning())
	case http.MethodPut:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSettingsBody))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		updated, err := h.tuning.UpdateTuning(body)
		if err != nil {
			if errors.Is(err, config.ErrInvalid) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
