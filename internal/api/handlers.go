package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/errors"
	"github.com/stormboard/stormboard/pkg/pipeline"
)

// maxConceptBytes bounds the accepted concept payload size.
const maxConceptBytes = 10 << 20

// layoutResponse is the POST /v1/layout response body.
type layoutResponse struct {
	Board     *board.Board       `json:"board"`
	BoardHash string             `json:"boardHash,omitempty"`
	Warnings  []string           `json:"warnings"`
	Saved     bool               `json:"saved"`
	Stats     pipeline.Stats     `json:"stats"`
	CacheInfo pipeline.CacheInfo `json:"cacheInfo"`
}

// handleLayout runs the pipeline on a submitted concept payload.
//
// Query parameters: board names a stored snapshot to merge against, save
// persists the result, refresh bypasses the cache. A payload that is not
// JSON at all yields the sentinel error board instead of a failure.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxConceptBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read request body"))
		return
	}

	var prior *board.Board
	if name := r.URL.Query().Get("board"); name != "" {
		prior, err = s.boards.Get(r.Context(), name)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		ConceptJSON: body,
		Prior:       prior,
		Formats:     []string{pipeline.FormatJSON},
		Refresh:     boolParam(r, "refresh"),
	})
	if errors.Is(err, errors.ErrCodeInvalidConcept) {
		// The generator collaborator produced something that is not even
		// JSON; substitute the sentinel board rather than failing.
		writeJSON(w, http.StatusOK, layoutResponse{
			Board:    board.ErrorBoard(errors.UserMessage(err)),
			Warnings: []string{errors.UserMessage(err)},
		})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := layoutResponse{
		Board:     result.Board,
		BoardHash: result.BoardHash,
		Warnings:  result.Warnings,
		Stats:     result.Stats,
		CacheInfo: result.CacheInfo,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}

	if boolParam(r, "save") {
		if err := s.boards.Put(r.Context(), result.Board); err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Saved = true
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	names, err := s.boards.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"boards": names})
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	b, err := s.boards.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handlePutBoard stores a submitted board snapshot under the path name.
func (s *Server) handlePutBoard(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxConceptBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read request body"))
		return
	}

	b, err := board.Unmarshal(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if b.InstanceName == "" {
		b.InstanceName = name
	}
	if b.InstanceName != name {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidName,
			"board name %q does not match path %q", b.InstanceName, name))
		return
	}

	if err := s.boards.Put(r.Context(), b); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := s.boards.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// contentTypes maps render formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
}

// handleRenderBoard renders a stored board. The format query parameter
// defaults to svg.
func (s *Server) handleRenderBoard(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if !pipeline.ValidFormats[format] {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format))
		return
	}

	b, err := s.boards.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	artifacts, err := s.runner.Render(r.Context(), b, pipeline.Options{
		Formats:       []string{format},
		ProducesEdges: boolParam(r, "produces"),
		Detailed:      boolParam(r, "detailed"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func boolParam(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
