package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

// SettingsHandler exposes the persisted tuning overrides. Changes are
// validated against the base configuration and take effect at the next start.
type SettingsHandler struct {
	store *store.Store
	base  *config.Config
}

// NewSettingsHandler creates a SettingsHandler. base is the configuration
// loaded from file, before any overrides.
func NewSettingsHandler(s *store.Store, base *config.Config) *SettingsHandler {
	if base == nil {
		base = config.Default()
	}
	return &SettingsHandler{store: s, base: base}
}

type settingsResponse struct {
	Settings map[string]string `json:"settings"`
	Keys     []string          `json:"keys"`
}

type updateSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}

// ServeHTTP routes /api/settings and /api/settings/{key}.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := itemID(r.URL.Path, "/api/settings")

	if key != "" {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.delete(w, key)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) list(w http.ResponseWriter) {
	values, err := h.store.Settings().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: values, Keys: config.SettingKeys()})
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Settings) == 0 {
		writeError(w, http.StatusBadRequest, "No settings given")
		return
	}

	current, err := h.store.Settings().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read settings")
		return
	}
	for k, v := range req.Settings {
		current[k] = v
	}
	if err := h.base.ValidateSettings(current); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Settings().SetAll(req.Settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: current, Keys: config.SettingKeys()})
}

func (h *SettingsHandler) delete(w http.ResponseWriter, key string) {
	err := h.store.Settings().Delete(key)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Setting not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
