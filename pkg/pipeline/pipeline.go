// Package pipeline provides the complete board pipeline for Stormboard.
//
// This package implements the normalize → layout → render flow used by both
// the CLI and the HTTP API. Centralizing it keeps behavior identical across
// entry points and gives both the same caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Normalize: repair the untyped concept payload into a valid model
//  2. Layout: compute the board, merging against a prior snapshot
//  3. Render: produce output artifacts (JSON, DOT, SVG, PNG)
//
// Normalization is cheap and never cached. The layout stage is cached by the
// concept payload and prior snapshot content; rendered artifacts are cached
// per format by board content.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ConceptJSON: payload,
//	    Prior:       prior,
//	    Formats:     []string{"json", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/concept"
	"github.com/stormboard/stormboard/pkg/errors"
	"github.com/stormboard/stormboard/pkg/layout"
)

// =============================================================================
// Constants - Single Source of Truth for CLI and API
// =============================================================================

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// DefaultFormats is used when no formats are requested.
var DefaultFormats = []string{FormatJSON}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// ConceptJSON is the raw concept payload. Must be valid JSON; any
	// structural violation inside it is repaired by normalization.
	ConceptJSON []byte

	// Prior is the snapshot to merge against. Nil means a first layout.
	Prior *board.Board

	// Formats selects the output artifacts. Defaults to ["json"].
	Formats []string

	// ProducesEdges includes produced-event edges in DOT-based formats.
	ProducesEdges bool

	// Detailed appends item descriptions to DOT node labels.
	Detailed bool

	// Refresh bypasses the cache and recomputes everything.
	Refresh bool

	// Infer replaces the produced-event inference heuristic.
	Infer layout.InferStrategy

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.ConceptJSON) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "concept payload is required")
	}
	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", f)
		}
	}
	return nil
}

// =============================================================================
// Result - Pipeline Output
// =============================================================================

// Stats captures per-stage timing and board size.
type Stats struct {
	NormalizeTime time.Duration `json:"normalize_time"`
	LayoutTime    time.Duration `json:"layout_time"`
	RenderTime    time.Duration `json:"render_time"`

	ContextCount    int `json:"context_count"`
	ItemCount       int `json:"item_count"`
	ConnectionCount int `json:"connection_count"`
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	LayoutHit bool `json:"layout_hit"`
	RenderHit bool `json:"render_hit"`
}

// Result is the output of a pipeline run.
type Result struct {
	// Model is the normalized concept model.
	Model concept.Model

	// Board is the computed board.
	Board *board.Board

	// BoardHash is the content hash of the board JSON, usable as an etag.
	BoardHash string

	// Warnings lists dropped connections and unresolved produced events.
	Warnings []string

	// Artifacts maps format to rendered bytes.
	Artifacts map[string][]byte

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache_info"`
}
