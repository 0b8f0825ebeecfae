package server

import (
	"errors"
	"net/http"

	"github.com/youruser/texai/internal/llm"
	"github.com/youruser/texai/internal/store"
)

type CreateDocumentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type UpdateDocumentRequest struct {
	Content     string `json:"content"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Document name is required")
		return
	}

	doc, err := s.store.CreateDocument(r.Context(), req.Name, req.Content)
	if err != nil {
		log.Error("creating document: %v", err)
		writeError(w, http.StatusInternalServerError, "Could not create document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context())
	if err != nil {
		log.Error("listing documents: %v", err)
		writeError(w, http.StatusInternalServerError, "Could not list documents")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		s.documentError(w, err, "Could not load document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req UpdateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doc, err := s.store.UpdateDocument(r.Context(), r.PathValue("id"), req.Content, req.Description)
	if err != nil {
		s.documentError(w, err, "Could not update document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDocument(r.Context(), r.PathValue("id")); err != nil {
		s.documentError(w, err, "Could not delete document")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted"})
}

func (s *Server) handleDocumentVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.store.ListVersions(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Error("listing versions: %v", err)
		writeError(w, http.StatusInternalServerError, "Could not list versions")
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// handleDocumentTokens estimates the token footprint of a document, or
// of the content supplied in the body when the editor has unsaved
// changes.
func (s *Server) handleDocumentTokens(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content,omitempty"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	text := req.Content
	if text == "" {
		doc, err := s.store.GetDocument(r.Context(), r.PathValue("id"))
		if err != nil {
			s.documentError(w, err, "Could not load document")
			return
		}
		text = doc.Content
	}

	tokens, err := llm.EstimateTokens(text)
	if err != nil {
		log.Error("token estimate: %v", err)
		writeError(w, http.StatusInternalServerError, "Could not estimate tokens")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"tokens":     tokens,
		"characters": len(text),
	})
}

func (s *Server) documentError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}
	log.Error("%s: %v", fallback, err)
	writeError(w, http.StatusInternalServerError, fallback)
}
