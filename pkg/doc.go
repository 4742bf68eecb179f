// Package pkg provides the core libraries for Stormboard board generation.
//
// # Overview
//
// Stormboard turns a normalized EventStorming concept model (bounded contexts
// containing commands, events, policies, aggregates, and read models) into a
// persisted 2D board: every item gets a stable identity, a pixel position and
// size, and a containing context box; every declared cross-context connection
// is validated and resolved to concrete item identities.
//
// # Architecture
//
// The typical data flow through Stormboard:
//
//	Concept JSON (from an external generator)
//	         ↓
//	    [concept] package (normalize into a valid model)
//	         ↓
//	    [layout] package (pack columns, merge against prior board,
//	                      resolve connections, repair containment)
//	         ↓
//	    [board] package (persisted board types + codec)
//	         ↓
//	    JSON/DOT/SVG/PNG output, [store] persistence
//
// # Main Packages
//
// [concept] - Concept model types and the normalizer that repairs untyped
// generator output into a structurally valid model. The normalizer never
// fails; malformed fragments are coerced or dropped.
//
// [layout] - The incremental layout and merge engine: dimension heuristics,
// per-context column packing, identity-preserving merge against a prior
// board snapshot with collapse detection, connection resolution, and
// containment repair. Pure and deterministic.
//
// [board] - Serialization types for persisted boards (items, connections),
// shape validation, and the sentinel error board.
//
// [render/nodelink] - Cross-context flow diagrams via Graphviz (contexts as
// clusters, items as nodes, connections as edges).
//
// [pipeline] - Orchestration (normalize → layout → render) with per-stage
// caching, used by both the CLI and the HTTP API.
//
// [cache] - Cache and Keyer interfaces with file, Redis, null, and scoped
// implementations.
//
// [store] - Board snapshot persistence with file and MongoDB backends.
//
// [errors] - Structured, code-based errors shared by CLI and API.
//
// [observability] - Optional instrumentation hooks with no-op defaults.
//
// # Quick Start
//
// Normalize a concept payload and lay out a board:
//
//	model := concept.Normalize(payload)
//	engine := layout.NewEngine(nil)
//	b, warnings := engine.Layout(model, prior)
//	data, _ := board.Marshal(b)
//
// [concept]: https://pkg.go.dev/github.com/stormboard/stormboard/pkg/concept
// [layout]: https://pkg.go.dev/github.com/stormboard/stormboard/pkg/layout
// [board]: https://pkg.go.dev/github.com/stormboard/stormboard/pkg/board
// [render/nodelink]: https://pkg.go.dev/github.com/stormboard/stormboard/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/stormboard/stormboard/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/stormboard/stormboard/pkg/cache
// [store]: https://pkg.go.dev/github.com/stormboard/stormboard/pkg/store
// [errors]: https://pkg.go.dev/github.com/stormboard/stormboard/pkg/errors
// [observability]: https://pkg.go.dev/github.com/stormboard/stormboard/pkg/observability
package pkg
