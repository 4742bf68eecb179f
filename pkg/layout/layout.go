// Package layout implements the incremental board layout and merge engine.
//
// The engine turns a normalized concept model into a positioned board,
// optionally merging against a prior snapshot so that unrelated edits do not
// reshuffle a user's manual arrangement.
//
// # Pipeline
//
// A single Layout call runs five stages in a fixed order:
//
//  1. Column packing: per context, items bucket into left (commands,
//     policies), center (aggregates), and right (events, read models)
//     columns, are sized from their content, and receive ideal positions.
//  2. Identity merge: each item recovers its prior id and position by
//     (type, name), with collapse detection guarding against corrupted
//     prior layouts. Fresh ids never collide with reused ones.
//  3. Connection resolution: named endpoints resolve to ids; unresolved
//     references are dropped with a warning, same-context pairs silently.
//  4. Produces-event resolution: explicit producedEventName lookups, then
//     a verb/participle heuristic over same-context events.
//  5. Containment repair: boxes grow to enclose strays, detached children
//     are re-stacked inside their box.
//
// # Determinism
//
// The engine is a pure, synchronous transform. Contexts are processed in
// model order, items in column order, connections in declaration order; map
// iteration never feeds output ordering. Identical inputs produce
// byte-identical boards.
//
// Concurrent merges against the same prior snapshot would allocate ids
// independently and could collide; serializing edits per board identity is
// the caller's responsibility.
package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/concept"
)

// Engine computes board layouts. The zero value is not usable; construct
// with NewEngine.
type Engine struct {
	logger *log.Logger
	infer  InferStrategy
}

// Option configures an Engine.
type Option func(*Engine)

// WithInferStrategy replaces the produced-event inference heuristic.
func WithInferStrategy(s InferStrategy) Option {
	return func(e *Engine) {
		if s != nil {
			e.infer = s
		}
	}
}

// NewEngine creates a layout engine. A nil logger discards all output.
func NewEngine(logger *log.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Engine{
		logger: logger,
		infer:  DefaultInferStrategy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout computes the board for a concept model, merging against prior when
// given. It never fails: unresolved references degrade to warnings, which
// are both logged and returned.
//
// Pass prior as nil for a first layout. The prior board is read only.
func (e *Engine) Layout(model concept.Model, prior *board.Board) (*board.Board, []string) {
	slug := concept.Slugify(model.ProjectName)
	lc := newLayoutContext(prior)

	priorKeys := map[board.Key]*board.Item{}
	if prior != nil {
		priorKeys = prior.KeyIndex()
	}

	b := &board.Board{
		InstanceName: slug,
		Items:        []board.Item{},
		Connections:  []board.Connection{},
	}

	originX := 0.0
	for _, ctx := range model.Contexts {
		packed := packContext(ctx, originX)
		b.Items = append(b.Items, resolveContext(packed, priorKeys, lc)...)
		originX += packed.box.width + ContextHGap
	}

	conns, warnings := resolveConnections(model.Connections, lc)
	b.Connections = conns
	warnings = append(warnings, resolveProduces(b.Items, e.infer, lc)...)

	Repair(b)

	for _, w := range warnings {
		e.logger.Warn(w, "board", slug)
	}
	return b, warnings
}
