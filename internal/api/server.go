// Package api exposes the HTTP interface for managing workflows and results.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aera-dev/aera/internal/metrics"
	"github.com/aera-dev/aera/internal/workflow"
)

// Server wires HTTP handlers to the workflow store.
type Server struct {
	router chi.Router
	store  workflow.Store
	idGen  workflow.IDGenerator
	clock  workflow.Clock
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(store workflow.Store, idGen workflow.IDGenerator, clock workflow.Clock, logger *zap.Logger) *Server {
	s := &Server{
		store:  store,
		idGen:  idGen,
		clock:  clock,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(metricsMiddleware)
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/workflows", func(r chi.Router) {
		r.Post("/", s.createWorkflow)
		r.Get("/", s.listWorkflows)
		r.Delete("/{workflow_id}", s.deleteWorkflow)
	})
	r.Route("/workflow-results", func(r chi.Router) {
		r.Get("/", s.listResults)
		r.Put("/{result_id}/seen", s.markResultSeen)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createWorkflowRequest struct {
	UserID     string `json:"user_id"`
	URL        string `json:"url"`
	Prompt     string `json:"prompt"`
	Frequency  string `json:"frequency"`
	NotifyType string `json:"notify_type"`
	Email      string `json:"email"`
}

func (s *Server) createWorkflow(w http.ResponseWriter, r *http.Request) {
	var req createWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	wf, err := s.toWorkflow(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.store.Create(r.Context(), wf)
	if err != nil {
		if errors.Is(err, workflow.ErrExists) {
			writeError(w, http.StatusConflict, "workflow already exists")
			return
		}
		s.logger.Error("create workflow failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create workflow")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"workflow": created})
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	workflows, err := s.store.GetByUser(r.Context(), userID)
	if err != nil {
		s.logger.Error("list workflows failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list workflows")
		return
	}
	if workflows == nil {
		workflows = []workflow.Workflow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"workflows": workflows})
}

func (s *Server) deleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflow_id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			writeError(w, http.StatusNotFound, "workflow not found")
			return
		}
		s.logger.Error("delete workflow failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete workflow")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"workflow_id": id, "status": "deleted"})
}

func (s *Server) listResults(w http.ResponseWriter, r *http.Request) {
	workflowID := r.URL.Query().Get("workflow_id")
	if workflowID == "" {
		writeError(w, http.StatusBadRequest, "workflow_id is required")
		return
	}
	results, err := s.store.ListResults(r.Context(), workflowID)
	if err != nil {
		s.logger.Error("list results failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	if results == nil {
		results = []workflow.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) markResultSeen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "result_id")
	result, err := s.store.MarkResultSeen(r.Context(), id)
	if err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			writeError(w, http.StatusNotFound, "result not found")
			return
		}
		s.logger.Error("mark result seen failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update result")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (s *Server) toWorkflow(req createWorkflowRequest) (workflow.Workflow, error) {
	if req.UserID == "" {
		return workflow.Workflow{}, errors.New("user_id is required")
	}
	if err := validateURL(req.URL); err != nil {
		return workflow.Workflow{}, err
	}
	frequency := workflow.Frequency(req.Frequency)
	switch frequency {
	case workflow.FrequencyQuarterHour, workflow.FrequencyHourly, workflow.FrequencyDaily:
	default:
		return workflow.Workflow{}, fmt.Errorf("frequency must be one of 15min, hourly, daily")
	}
	notify := workflow.NotifyType(req.NotifyType)
	switch notify {
	case workflow.NotifyEmail, workflow.NotifyInApp:
	default:
		return workflow.Workflow{}, fmt.Errorf("notify_type must be email or in-app")
	}
	if notify == workflow.NotifyEmail && req.Email == "" {
		return workflow.Workflow{}, errors.New("email is required for email notifications")
	}
	id, err := s.idGen.NewID()
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("generate workflow id: %w", err)
	}
	now := s.clock.Now()
	return workflow.Workflow{
		ID:         id,
		UserID:     req.UserID,
		URL:        req.URL,
		Prompt:     req.Prompt,
		Frequency:  frequency,
		NotifyType: notify,
		Email:      req.Email,
		Status:     workflow.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return errors.New("url must be an absolute http or https URL")
	}
	if !strings.EqualFold(parsed.Scheme, "http") && !strings.EqualFold(parsed.Scheme, "https") {
		return errors.New("url must be an absolute http or https URL")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
