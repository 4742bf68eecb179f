// Package api implements the Stormboard HTTP API.
//
// Routes:
//
//	GET    /healthz                    liveness and version
//	POST   /v1/layout                  concept JSON -> board (query: board, save, refresh)
//	GET    /v1/boards                  list stored instance names
//	GET    /v1/boards/{name}           load a stored board
//	PUT    /v1/boards/{name}           store a board snapshot
//	DELETE /v1/boards/{name}           delete a stored board
//	GET    /v1/boards/{name}/render    render a stored board (query: format)
//
// Errors are returned as {"error": {"code", "message"}} with the status
// derived from the error code.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stormboard/stormboard/pkg/buildinfo"
	"github.com/stormboard/stormboard/pkg/errors"
	"github.com/stormboard/stormboard/pkg/pipeline"
	"github.com/stormboard/stormboard/pkg/store"
)

// Server holds the API's collaborators.
type Server struct {
	runner *pipeline.Runner
	boards store.Store
	logger *log.Logger
}

// NewServer creates an API server around a pipeline runner and board store.
func NewServer(runner *pipeline.Runner, boards store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		boards: boards,
		logger: logger,
	}
}

// Routes builds the chi router with middleware and all endpoints mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Get("/boards", s.handleListBoards)
		r.Route("/boards/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetBoard)
			r.Put("/", s.handlePutBoard)
			r.Delete("/", s.handleDeleteBoard)
			r.Get("/render", s.handleRenderBoard)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    string(code),
			"message": errors.UserMessage(err),
		},
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeBoardNotFound, errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConcept, errors.ErrCodeInvalidBoard,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidName, errors.ErrCodeUnresolvedReference:
		return http.StatusBadRequest
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
