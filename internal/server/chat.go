package server

import (
	"fmt"
	"net/http"

	"github.com/youruser/texai/internal/ai"
	"github.com/youruser/texai/internal/patch"
)

// ChatRequest is one chat turn from the front-end. DocumentID and
// ConversationID are optional; when a document is named the exchange
// is persisted to its conversation history.
type ChatRequest struct {
	Message             string       `json:"message"`
	LatexContent        string       `json:"latex_content"`
	ConversationHistory []ai.Message `json:"conversation_history"`
	Stream              bool         `json:"stream"`
	Model               string       `json:"model,omitempty"`
	DocumentID          string       `json:"document_id,omitempty"`
	ConversationID      string       `json:"conversation_id,omitempty"`
}

type ChatResponse struct {
	Message        string         `json:"message"`
	Suggestions    []string       `json:"suggestions"`
	ModifiedLatex  string         `json:"modified_latex,omitempty"`
	Changes        []patch.Change `json:"changes"`
	ConversationID string         `json:"conversation_id,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
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

	if req.Stream {
		s.streamChat(w, r, req, model)
		return
	}

	result, err := s.ai.Chat(r.Context(), model, req.Message, req.LatexContent, req.ConversationHistory)
	if err != nil {
		log.Error("chat request failed: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Chat failed: %v", err))
		return
	}

	conversationID := s.persistChatTurn(r, req, result)
	writeJSON(w, http.StatusOK, ChatResponse{
		Message:        result.Explanation,
		Suggestions:    chatSuggestions,
		ModifiedLatex:  result.ModifiedLatex,
		Changes:        result.Changes,
		ConversationID: conversationID,
	})
}

func (s *Server) streamChat(w http.ResponseWriter, r *http.Request, req ChatRequest, model string) {
	sse, ok := newSSEWriter(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	err := s.ai.ChatStream(r.Context(), model, req.Message, req.LatexContent, req.ConversationHistory,
		func(chunk ai.StreamChunk) { sse.send(chunk) })
	if err != nil {
		// the terminal error chunk already went out; no end marker
		log.Error("chat stream failed: %v", err)
		return
	}
	sse.done()
}

// persistChatTurn records the exchange when the request names a
// document. Returns the conversation id, or "" when nothing was
// stored.
func (s *Server) persistChatTurn(r *http.Request, req ChatRequest, result *ai.ChatResult) string {
	if s.store == nil || req.DocumentID == "" {
		return req.ConversationID
	}
	ctx := r.Context()

	conversationID := req.ConversationID
	if conversationID == "" {
		conv, err := s.store.CreateConversation(ctx, req.DocumentID)
		if err != nil {
			log.Error("creating conversation: %v", err)
			return ""
		}
		conversationID = conv.ID
	}

	if _, err := s.store.AddMessage(ctx, conversationID, "user", req.Message, "", ""); err != nil {
		log.Error("storing user message: %v", err)
	}
	status := ""
	if result.ModifiedLatex != "" {
		status = "pending"
	}
	if _, err := s.store.AddMessage(ctx, conversationID, "assistant", result.Explanation, result.ModifiedLatex, status); err != nil {
		log.Error("storing assistant message: %v", err)
	}
	return conversationID
}

var chatSuggestions = []string{
	"Improve writing",
	"Add equations",
	"Fix errors",
	"Improve formatting",
	"Add sections",
	"Optimize structure",
	"Add bibliography",
	"Improve equations",
}

func (s *Server) handleChatSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": chatSuggestions})
}
