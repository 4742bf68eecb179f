package layout

import (
	"fmt"
	"strings"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/concept"
)

// =============================================================================
// Connection Resolver
// =============================================================================

// resolveConnections maps named connection endpoints to resolved item ids.
//
// An endpoint that resolves to no item drops the connection with a warning.
// A connection whose endpoints share a context is dropped silently; those
// interactions are intra-context behavior, not board connections. Duplicate
// resolved pairs collapse to one connection.
func resolveConnections(specs []concept.ConnectionSpec, lc *layoutContext) ([]board.Connection, []string) {
	conns := []board.Connection{}
	var warnings []string
	seen := make(map[string]bool)

	for _, spec := range specs {
		fromID, fromOK := lc.nameToID[spec.FromName]
		toID, toOK := lc.nameToID[spec.ToName]
		if !fromOK || !toOK {
			var missing []string
			if !fromOK {
				missing = append(missing, spec.FromName)
			}
			if !toOK {
				missing = append(missing, spec.ToName)
			}
			warnings = append(warnings, fmt.Sprintf("dropped connection %s -> %s: unresolved %s",
				spec.FromName, spec.ToName, strings.Join(missing, ", ")))
			continue
		}

		if lc.idToContext[fromID] == lc.idToContext[toID] {
			continue
		}

		id := fmt.Sprintf("conn-%s-%s", fromID, toID)
		if seen[id] {
			continue
		}
		seen[id] = true

		conns = append(conns, board.Connection{
			ID:         id,
			FromItemID: fromID,
			ToItemID:   toID,
			Type:       board.ConnectionType(spec.Type),
		})
	}

	return conns, warnings
}

// =============================================================================
// Produces-Event Resolution
// =============================================================================

// EventRef is a candidate event for produced-event inference.
type EventRef struct {
	Name string
	ID   string
}

// InferStrategy decides which of an item's same-context events, if any, the
// item produces. Implementations must be pure; candidates arrive in board
// order and the first match should win.
type InferStrategy func(itemName string, candidates []EventRef) (EventRef, bool)

// verbPairs are the known verb/participle pairs the default strategy
// recognizes. Intentionally narrow, not a morphological stemmer.
var verbPairs = [][2]string{
	{"register", "registered"},
	{"place", "placed"},
	{"create", "created"},
	{"update", "updated"},
	{"delete", "deleted"},
	{"cancel", "cancelled"},
	{"send", "sent"},
	{"pay", "paid"},
}

// DefaultInferStrategy matches an item to the first candidate event whose
// name carries the participle of a verb found in the item's name, e.g.
// "PlaceOrder" produces "OrderPlaced".
func DefaultInferStrategy(itemName string, candidates []EventRef) (EventRef, bool) {
	item := strings.ToLower(itemName)
	for _, cand := range candidates {
		event := strings.ToLower(cand.Name)
		for _, pair := range verbPairs {
			if strings.Contains(item, pair[0]) && strings.Contains(event, pair[1]) {
				return cand, true
			}
		}
	}
	return EventRef{}, false
}

// resolveProduces fills ProducesEventID on every Command and Policy item.
//
// An explicit producedEventName resolves through the event-restricted name
// table; a miss warns and leaves the field empty. Without an explicit name
// the strategy scans the item's same-context events.
func resolveProduces(items []board.Item, infer InferStrategy, lc *layoutContext) []string {
	var warnings []string

	for i := range items {
		it := &items[i]
		if it.Type != board.TypeCommand && it.Type != board.TypePolicy {
			continue
		}

		if name := lc.producedName[it.ID]; name != "" {
			id, ok := lc.eventNameToID[name]
			if !ok {
				warnings = append(warnings, fmt.Sprintf("item %s: produced event %q not found", it.Name, name))
				continue
			}
			it.ProducesEventID = id
			continue
		}

		if ref, ok := infer(it.Name, lc.contextEvents[it.ParentID]); ok {
			it.ProducesEventID = ref.ID
		}
	}

	return warnings
}
