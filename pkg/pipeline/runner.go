package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/buildinfo"
	"github.com/stormboard/stormboard/pkg/cache"
	"github.com/stormboard/stormboard/pkg/concept"
	"github.com/stormboard/stormboard/pkg/errors"
	"github.com/stormboard/stormboard/pkg/layout"
	"github.com/stormboard/stormboard/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't store
// pipeline results. Multiple goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete normalize → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)
	hooks := observability.Pipeline()

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Normalize
	normalizeStart := time.Now()
	hooks.OnNormalizeStart(ctx, len(opts.ConceptJSON))
	model, err := concept.ParseModel(opts.ConceptJSON)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConcept, err, "concept payload is not valid JSON")
	}
	result.Model = model
	result.Stats.NormalizeTime = time.Since(normalizeStart)
	result.Stats.ContextCount = len(model.Contexts)
	hooks.OnNormalizeComplete(ctx, len(model.Contexts), result.Stats.NormalizeTime)

	logger.Debug("normalized concept",
		"contexts", len(model.Contexts),
		"connections", len(model.Connections))

	// Stage 2: Layout
	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, concept.Slugify(model.ProjectName), len(model.Contexts))
	b, warnings, layoutHit, err := r.LayoutWithCacheInfo(ctx, model, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, concept.Slugify(model.ProjectName), itemCount(b), result.Stats.LayoutTime, err)
	if err != nil {
		return nil, err
	}
	result.Board = b
	result.Warnings = warnings
	result.Stats.ItemCount = len(b.Items)
	result.Stats.ConnectionCount = len(b.Connections)
	result.CacheInfo.LayoutHit = layoutHit

	if data, err := board.Marshal(b); err == nil {
		result.BoardHash = cache.Hash(data)
	}

	logger.Info("computed board",
		"board", b.InstanceName,
		"items", len(b.Items),
		"connections", len(b.Connections),
		"cache_hit", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, b, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cache_hit", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// layoutEnvelope is the cached form of a layout stage result. Warnings are
// part of the envelope so a cache hit reproduces them.
type layoutEnvelope struct {
	Board    *board.Board `json:"board"`
	Warnings []string     `json:"warnings"`
}

// LayoutWithCacheInfo computes the board with caching and reports whether it
// was served from cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, model concept.Model, opts Options) (*board.Board, []string, bool, error) {
	cacheHooks := observability.Cache()

	priorHash := ""
	if opts.Prior != nil {
		if data, err := board.Marshal(opts.Prior); err == nil {
			priorHash = cache.Hash(data)
		}
	}
	conceptData, err := concept.MarshalModel(model)
	if err != nil {
		return nil, nil, false, errors.Wrap(errors.ErrCodeInternal, err, "failed to serialize model")
	}
	cacheKey := r.Keyer.BoardKey(cache.Hash(conceptData), priorHash, cache.BoardKeyOpts{
		EngineVersion: buildinfo.Version,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var env layoutEnvelope
			if err := json.Unmarshal(data, &env); err == nil && env.Board != nil {
				cacheHooks.OnCacheHit(ctx, "board")
				return env.Board, env.Warnings, true, nil
			}
		}
		cacheHooks.OnCacheMiss(ctx, "board")
	}

	engine := layout.NewEngine(r.logger(opts), layout.WithInferStrategy(opts.Infer))
	b, warnings := engine.Layout(model, opts.Prior)

	if data, err := json.Marshal(layoutEnvelope{Board: b, Warnings: warnings}); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.BoardTTL); err == nil {
			cacheHooks.OnCacheSet(ctx, "board", len(data))
		}
	}

	return b, warnings, false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, model concept.Model, opts Options) (*board.Board, []string, error) {
	b, warnings, _, err := r.LayoutWithCacheInfo(ctx, model, opts)
	return b, warnings, err
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// all of them came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, b *board.Board, opts Options) (map[string][]byte, bool, error) {
	cacheHooks := observability.Cache()

	boardData, err := board.Marshal(b)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "failed to serialize board")
	}
	boardHash := cache.Hash(boardData)

	// Try to serve every requested format from cache.
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		allCached := true
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(boardHash, opts.artifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			cacheHooks.OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		cacheHooks.OnCacheMiss(ctx, "artifact")
	}

	rendered, err := renderFormats(ctx, b, boardData, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(boardHash, opts.artifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
			cacheHooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, b *board.Board, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, b, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// artifactKeyOpts builds the cache key options for one format.
func (o *Options) artifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:        format,
		ProducesEdges: o.ProducesEdges,
		Detailed:      o.Detailed,
	}
}

func itemCount(b *board.Board) int {
	if b == nil {
		return 0
	}
	return len(b.Items)
}
