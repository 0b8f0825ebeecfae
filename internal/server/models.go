package server

import (
	"net/http"
)

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.models.ListModels(r.Context())
	if err != nil {
		log.Error("listing models: %v", err)
		writeError(w, http.StatusServiceUnavailable,
			"Could not list models. Make sure Ollama is running.")
		return
	}
	writeJSON(w, http.StatusOK, models)
}

func (s *Server) handleGetCurrentModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"model":    s.CurrentModel(),
		"base_url": s.cfg.OllamaBaseURL,
	})
}

func (s *Server) handleSetCurrentModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model string `json:"model"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Model == "" {
		writeError(w, http.StatusBadRequest, "Model name is required")
		return
	}

	s.setCurrentModel(r.Context(), req.Model)
	writeJSON(w, http.StatusOK, map[string]string{
		"model":  req.Model,
		"status": "updated",
	})
}

func (s *Server) handleOpenRouterModels(w http.ResponseWriter, r *http.Request) {
	models := s.catalog.FreeModels(r.Context())
	if models == nil {
		// keep the empty-list shape rather than null
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, models)
}
