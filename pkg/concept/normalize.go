package concept

import (
	"fmt"
	"strings"
)

// =============================================================================
// Normalization
// =============================================================================

// Normalize repairs a decoded concept payload into a valid Model.
//
// Normalization never fails. Every structural violation has a repair rule:
//
//   - A non-object payload yields an empty model with a default project name.
//   - A scalar or object where a list is expected is wrapped into a
//     single-element list; null becomes an empty list.
//   - Context entries that are not objects are dropped.
//   - A missing or blank context name becomes "context-N" (1-based position).
//   - Items with empty names are dropped; the name is the merge identity and
//     a nameless item can never be addressed again.
//   - Connection entries missing either endpoint name are dropped; a missing
//     connection type defaults to Flow.
//
// The repaired model may carry less information than the payload, never more.
func Normalize(payload map[string]any) Model {
	return NormalizeValue(payload)
}

// NormalizeValue is Normalize for a payload of unknown top-level type.
func NormalizeValue(raw any) Model {
	m := Model{
		ProjectName: DefaultProjectName,
		Contexts:    []Context{},
		Connections: []ConnectionSpec{},
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return m
	}

	if name := cleanString(obj["projectName"]); name != "" {
		m.ProjectName = name
	}

	for i, entry := range asList(obj["contexts"]) {
		ctxObj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		m.Contexts = append(m.Contexts, normalizeContext(ctxObj, i))
	}

	for _, entry := range asList(obj["connections"]) {
		connObj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		conn := ConnectionSpec{
			FromName: cleanString(connObj["fromName"]),
			ToName:   cleanString(connObj["toName"]),
			Type:     cleanString(connObj["type"]),
		}
		if conn.FromName == "" || conn.ToName == "" {
			continue
		}
		if conn.Type != ConnectionFlow && conn.Type != ConnectionRequestResponse {
			conn.Type = ConnectionFlow
		}
		m.Connections = append(m.Connections, conn)
	}

	return m
}

func normalizeContext(obj map[string]any, index int) Context {
	c := Context{
		Name:        cleanString(obj["name"]),
		Description: cleanString(obj["description"]),
	}
	if c.Name == "" {
		c.Name = fmt.Sprintf("context-%d", index+1)
	}

	c.Commands = normalizeItems(obj["commands"])
	c.Events = normalizeItems(obj["events"])
	c.Policies = normalizeItems(obj["policies"])
	c.Aggregates = normalizeItems(obj["aggregates"])
	c.ReadModels = normalizeItems(obj["readModels"])
	return c
}

func normalizeItems(raw any) []Item {
	items := []Item{}
	for _, entry := range asList(raw) {
		item, ok := normalizeItem(entry)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

func normalizeItem(raw any) (Item, bool) {
	// A bare string is shorthand for an item with only a name.
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return Item{}, false
		}
		return Item{Name: s}, true
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return Item{}, false
	}

	item := Item{
		Name:              cleanString(obj["name"]),
		Description:       cleanString(obj["description"]),
		ProducedEventName: cleanString(obj["producedEventName"]),
	}
	if item.Name == "" {
		return Item{}, false
	}

	for _, f := range asList(obj["fields"]) {
		if s := cleanString(f); s != "" {
			item.Fields = append(item.Fields, s)
		}
	}
	return item, true
}

// asList coerces a value into a list: lists pass through, null becomes an
// empty list, and anything else is wrapped as a single element.
func asList(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

// cleanString extracts a trimmed string from a value, formatting scalars and
// returning "" for anything structural.
func cleanString(raw any) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		// JSON numbers decode as float64; keep integral ones readable.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return ""
	}
}
