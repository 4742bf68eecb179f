// Package concept defines the normalized EventStorming concept model and the
// normalizer that repairs untyped generator output into it.
//
// A concept model describes WHAT a system does: bounded contexts containing
// commands, events, policies, aggregates, and read models, plus named
// cross-context connections. It carries no layout information - positions and
// identities are assigned by the layout engine and persisted on the board,
// never on the model.
//
// The model typically arrives as JSON from an external generator and may
// violate the schema in every way a text model can invent: missing
// collections, scalar values where lists are expected, contexts that are not
// objects at all. [Normalize] accepts any of that and always produces a
// structurally valid Model, trading information loss for total robustness.
package concept

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Item kinds within a bounded context.
const (
	KindAggregate = "Aggregate"
	KindCommand   = "Command"
	KindEvent     = "Event"
	KindPolicy    = "Policy"
	KindReadModel = "ReadModel"
)

// Connection types between items in different contexts.
const (
	ConnectionFlow            = "Flow"
	ConnectionRequestResponse = "RequestResponse"
)

// DefaultProjectName is used when the generator omitted a project name.
const DefaultProjectName = "Untitled Project"

// DefaultSlug is the instance-name fallback when a project name slugifies
// to nothing.
const DefaultSlug = "eventstorming-board"

// =============================================================================
// Model Types
// =============================================================================

// Item is a single domain item within a bounded context.
// The kind is implied by which Context list the item lives in.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// ProducedEventName names the event a command or policy produces.
	// Optional; when absent the layout engine falls back to a verb/participle
	// heuristic over same-context events.
	ProducedEventName string `json:"producedEventName,omitempty"`

	// Fields lists the structured fields of a read model projection.
	Fields []string `json:"fields,omitempty"`
}

// Context is a bounded context: an independently-deployable domain boundary
// that becomes one context box on the board.
type Context struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Commands   []Item `json:"commands"`
	Events     []Item `json:"events"`
	Policies   []Item `json:"policies"`
	Aggregates []Item `json:"aggregates"`
	ReadModels []Item `json:"readModels"`
}

// ItemCount returns the number of items across all kinds.
func (c *Context) ItemCount() int {
	return len(c.Commands) + len(c.Events) + len(c.Policies) + len(c.Aggregates) + len(c.ReadModels)
}

// ConnectionSpec declares a connection between two named items in different
// contexts. Endpoints are names, not identities; the layout engine resolves
// them against the board being built.
type ConnectionSpec struct {
	FromName string `json:"fromName"`
	ToName   string `json:"toName"`
	Type     string `json:"type"`
}

// Model is the normalized concept model: the input to the layout engine.
// It is never persisted - only the derived board is.
type Model struct {
	ProjectName string           `json:"projectName"`
	Contexts    []Context        `json:"contexts"`
	Connections []ConnectionSpec `json:"connections"`
}

// MarshalModel serializes a Model to pretty-printed JSON bytes.
func MarshalModel(m Model) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ParseModel decodes and normalizes a concept payload.
// Returns an error only if data is not valid JSON at all; any structural
// violation inside valid JSON is repaired by [Normalize].
func ParseModel(data []byte) (Model, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Model{}, fmt.Errorf("decode concept payload: %w", err)
	}
	return NormalizeValue(raw), nil
}

// =============================================================================
// Slugify
// =============================================================================

// Slugify converts a project name into a board instance name: every
// non-alphanumeric rune becomes a dash, dashes are trimmed from both ends,
// and the result is lowered. An empty result falls back to [DefaultSlug].
func Slugify(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
		default:
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return DefaultSlug
	}
	return slug
}
