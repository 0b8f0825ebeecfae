// Package server exposes the HTTP API consumed by the editor
// front-end: chat, improve and analyze pipelines, model listing and
// selection, document CRUD with version history, and settings.
package server

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"sync"
	"time"

	"github.com/youruser/texai/internal/ai"
	"github.com/youruser/texai/internal/catalog"
	"github.com/youruser/texai/internal/config"
	"github.com/youruser/texai/internal/llm"
	"github.com/youruser/texai/internal/logging"
	"github.com/youruser/texai/internal/store"
)

const apiVersion = "1.0.0"

var log = logging.Get()

// ModelClient is the slice of the Ollama client the server needs for
// model listing and health checks.
type ModelClient interface {
	ListModels(ctx context.Context) ([]llm.ModelInfo, error)
	CheckRunning(ctx context.Context) error
}

// ModelCatalog lists models from the secondary provider.
type ModelCatalog interface {
	FreeModels(ctx context.Context) []catalog.Model
}

type Server struct {
	cfg     *config.Config
	ai      *ai.Service
	models  ModelClient
	catalog ModelCatalog
	store   *store.Store

	mux     *http.ServeMux
	httpSrv *http.Server

	// currentModel is the only state shared across requests.
	modelMu      sync.RWMutex
	currentModel string
}

func New(cfg *config.Config, aiSvc *ai.Service, models ModelClient, cat ModelCatalog, st *store.Store) *Server {
	s := &Server{
		cfg:          cfg,
		ai:           aiSvc,
		models:       models,
		catalog:      cat,
		store:        st,
		mux:          http.NewServeMux(),
		currentModel: cfg.OllamaModel,
	}

	// a previously selected model survives restarts
	if st != nil {
		if saved, err := st.GetSetting(context.Background(), "current_model"); err == nil && saved != "" {
			s.currentModel = saved
		}
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST /api/v1/chat", s.handleChat)
	s.mux.HandleFunc("GET /api/v1/chat/suggestions", s.handleChatSuggestions)
	s.mux.HandleFunc("POST /api/v1/improve", s.handleImprove)
	s.mux.HandleFunc("POST /api/v1/analyze", s.handleAnalyze)

	s.mux.HandleFunc("GET /api/v1/models", s.handleListModels)
	s.mux.HandleFunc("GET /api/v1/models/current", s.handleGetCurrentModel)
	s.mux.HandleFunc("POST /api/v1/models/current", s.handleSetCurrentModel)
	s.mux.HandleFunc("GET /api/v1/openrouter/available-models", s.handleOpenRouterModels)

	s.mux.HandleFunc("POST /api/v1/documents", s.handleCreateDocument)
	s.mux.HandleFunc("GET /api/v1/documents", s.handleListDocuments)
	s.mux.HandleFunc("GET /api/v1/documents/{id}", s.handleGetDocument)
	s.mux.HandleFunc("PUT /api/v1/documents/{id}", s.handleUpdateDocument)
	s.mux.HandleFunc("DELETE /api/v1/documents/{id}", s.handleDeleteDocument)
	s.mux.HandleFunc("GET /api/v1/documents/{id}/versions", s.handleDocumentVersions)
	s.mux.HandleFunc("POST /api/v1/documents/{id}/tokens", s.handleDocumentTokens)

	s.mux.HandleFunc("GET /api/v1/settings", s.handleGetSettings)
	s.mux.HandleFunc("POST /api/v1/settings/{key}", s.handleUpdateSetting)

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return requestLog(corsMiddleware(s.cfg.CORSOrigins)(s.mux))
}

// Start runs the server until Shutdown is called or it fails.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:        s.cfg.Addr(),
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		// WriteTimeout stays off: SSE responses are open-ended
		IdleTimeout: 120 * time.Second,
		ErrorLog:    stdlog.New(log.Writer(), "http: ", stdlog.LstdFlags),
	}
	log.Info("listening on %s", s.cfg.Addr())
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// CurrentModel returns the model used when a request names none.
func (s *Server) CurrentModel() string {
	s.modelMu.RLock()
	defer s.modelMu.RUnlock()
	return s.currentModel
}

func (s *Server) setCurrentModel(ctx context.Context, model string) {
	s.modelMu.Lock()
	s.currentModel = model
	s.modelMu.Unlock()
	if s.store != nil {
		if err := s.store.SetSetting(ctx, "current_model", model); err != nil {
			log.Error("persisting model selection: %v", err)
		}
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "LaTeX AI Companion API",
		"version": apiVersion,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	ollamaStatus := "ok"

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.models.CheckRunning(ctx); err != nil {
		status = "degraded"
		ollamaStatus = "unavailable"
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"service": "texai-backend",
		"ollama":  ollamaStatus,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError sends the {"detail": ...} error shape the front-end
// expects.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
