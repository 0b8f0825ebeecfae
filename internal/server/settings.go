package server

import "net/http"

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.ListSettings(r.Context())
	if err != nil {
		log.Error("listing settings: %v", err)
		writeError(w, http.StatusInternalServerError, "Could not load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	key := r.PathValue("key")
	if err := s.store.SetSetting(r.Context(), key, req.Value); err != nil {
		log.Error("updating setting %q: %v", key, err)
		writeError(w, http.StatusInternalServerError, "Could not update setting")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "key": key})
}
