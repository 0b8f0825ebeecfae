package server

import (
	"fmt"
	"net/http"
)

type AnalyzeRequest struct {
	LatexContent string `json:"latex_content"`
	Model        string `json:"model,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.LatexContent) > s.cfg.MaxLatexLength {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("LaTeX document too long (maximum %d characters)", s.cfg.MaxLatexLength))
		return
	}

	model := req.Model
	if model == "" {
		model = s.CurrentModel()
	}

	analysis, err := s.ai.Analyze(r.Context(), model, req.LatexContent)
	if err != nil {
		log.Error("analyze request failed: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Analyze failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
