package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/youruser/texai/internal/ai"
)

var validImprovementTypes = []string{"writing", "formatting", "equations", "structure", "all"}

type ImproveRequest struct {
	LatexContent    string   `json:"latex_content"`
	ImprovementType string   `json:"improvement_type"`
	UserMessage     string   `json:"user_message,omitempty"`
	FocusAreas      []string `json:"focus_areas,omitempty"`
	Stream          bool     `json:"stream"`
	Model           string   `json:"model,omitempty"`
}

func (s *Server) handleImprove(w http.ResponseWriter, r *http.Request) {
	var req ImproveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.LatexContent) > s.cfg.MaxLatexLength {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("LaTeX document too long (maximum %d characters)", s.cfg.MaxLatexLength))
		return
	}

	if req.ImprovementType == "" {
		req.ImprovementType = "all"
	}
	if !isValidImprovementType(req.ImprovementType) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid improvement type. Must be one of: %s", strings.Join(validImprovementTypes, ", ")))
		return
	}

	model := req.Model
	if model == "" {
		model = s.CurrentModel()
	}

	if req.Stream {
		sse, ok := newSSEWriter(w)
		if !ok {
			writeError(w, http.StatusInternalServerError, "Streaming not supported")
			return
		}
		err := s.ai.ImproveStream(r.Context(), model, req.LatexContent, req.ImprovementType, req.UserMessage, req.FocusAreas,
			func(chunk ai.StreamChunk) { sse.send(chunk) })
		if err != nil {
			log.Error("improve stream failed: %v", err)
			return
		}
		sse.done()
		return
	}

	result, err := s.ai.Improve(r.Context(), model, req.LatexContent, req.ImprovementType, req.UserMessage, req.FocusAreas)
	if err != nil {
		log.Error("improve request failed: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Improve failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func isValidImprovementType(t string) bool {
	for _, valid := range validImprovementTypes {
		if t == valid {
			return true
		}
	}
	return false
}
