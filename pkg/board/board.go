package board

import (
	"encoding/json"
	"os"

	"github.com/stormboard/stormboard/pkg/errors"
)

// =============================================================================
// Validation
// =============================================================================

// Validate checks the board's structural invariants:
//   - item ids are unique
//   - every non-ContextBox, non-Error item has a ParentID naming a ContextBox
//     on this board
//   - every connection goes from an Event to a Command, Policy, or ReadModel
//     whose parents differ
//
// A valid-but-empty board passes.
func (b *Board) Validate() error {
	seen := make(map[string]bool, len(b.Items))
	boxes := make(map[string]bool)
	for i := range b.Items {
		it := &b.Items[i]
		if it.ID == "" {
			return errors.New(errors.ErrCodeInvalidBoard, "item %q has no id", it.Name)
		}
		if seen[it.ID] {
			return errors.New(errors.ErrCodeInvalidBoard, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
		if it.Type == TypeContextBox {
			boxes[it.ID] = true
		}
	}

	for i := range b.Items {
		it := &b.Items[i]
		switch it.Type {
		case TypeContextBox, TypeError:
			if it.ParentID != "" {
				return errors.New(errors.ErrCodeInvalidBoard, "%s item %q must not have a parent", it.Type, it.ID)
			}
		default:
			if !boxes[it.ParentID] {
				return errors.New(errors.ErrCodeInvalidBoard, "item %q parent %q is not a context box", it.ID, it.ParentID)
			}
		}
	}

	idx := b.Index()
	for _, conn := range b.Connections {
		from, ok := idx[conn.FromItemID]
		if !ok {
			return errors.New(errors.ErrCodeUnresolvedReference, "connection %q source %q does not exist", conn.ID, conn.FromItemID)
		}
		to, ok := idx[conn.ToItemID]
		if !ok {
			return errors.New(errors.ErrCodeUnresolvedReference, "connection %q target %q does not exist", conn.ID, conn.ToItemID)
		}
		if from.Type != TypeEvent {
			return errors.New(errors.ErrCodeInvalidBoard, "connection %q source must be an Event, got %s", conn.ID, from.Type)
		}
		switch to.Type {
		case TypeCommand, TypePolicy, TypeReadModel:
		default:
			return errors.New(errors.ErrCodeInvalidBoard, "connection %q target must be a Command, Policy, or ReadModel, got %s", conn.ID, to.Type)
		}
		if from.ParentID == to.ParentID {
			return errors.New(errors.ErrCodeInvalidBoard, "connection %q links items in the same context", conn.ID)
		}
	}

	return nil
}

// =============================================================================
// Codec
// =============================================================================

// Marshal serializes a board to pretty-printed JSON.
func Marshal(b *Board) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to serialize board")
	}
	return data, nil
}

// Unmarshal decodes and validates a board from JSON.
func Unmarshal(data []byte) (*Board, error) {
	var b Board
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBoard, err, "failed to decode board")
	}
	if b.Items == nil {
		b.Items = []Item{}
	}
	if b.Connections == nil {
		b.Connections = []Connection{}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// ReadFile loads a board from a JSON file.
func ReadFile(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "board file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to read board file: %s", path)
	}
	return Unmarshal(data)
}

// WriteFile writes a board to a JSON file with 0644 permissions.
func WriteFile(path string, b *Board) error {
	data, err := Marshal(b)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "failed to write board file: %s", path)
	}
	return nil
}

// =============================================================================
// Sentinel Error Board
// =============================================================================

// ErrorBoard builds the fixed one-item board substituted when no valid
// concept model could be produced at all. The layout engine is never invoked
// on this path.
func ErrorBoard(reason string) *Board {
	return &Board{
		Items: []Item{
			{
				ID:          "item-1",
				Type:        TypeError,
				Name:        "Failed to generate concepts",
				Description: reason,
			},
		},
		Connections: []Connection{},
	}
}
