// Package board defines the persisted board model: positioned items inside
// context boxes plus resolved connections between them.
//
// A Board is the output of the layout engine and the unit of persistence.
// Unlike the concept model, every item here carries a stable identity and
// pixel geometry. The (type, name) pair is the merge key: it is how a later
// layout run recovers an item's id and position from a prior snapshot.
//
// Boards serialize to JSON for the CLI and HTTP API and carry bson tags for
// the mongo store.
package board

import (
	"strconv"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// ItemType identifies the visual kind of a board item.
type ItemType string

const (
	TypeContextBox ItemType = "ContextBox"
	TypeAggregate  ItemType = "Aggregate"
	TypeCommand    ItemType = "Command"
	TypeEvent      ItemType = "Event"
	TypePolicy     ItemType = "Policy"
	TypeReadModel  ItemType = "ReadModel"

	// TypeError marks the single item of a sentinel error board.
	TypeError ItemType = "Error"
)

// ConnectionType identifies how two items interact across contexts.
type ConnectionType string

const (
	ConnectionFlow            ConnectionType = "Flow"
	ConnectionRequestResponse ConnectionType = "RequestResponse"
)

// =============================================================================
// Board Types
// =============================================================================

// Item is a positioned element on the board.
//
// ParentID is empty for ContextBox and Error items; for everything else it
// must name a ContextBox on the same board.
type Item struct {
	ID          string   `json:"id" bson:"id"`
	Type        ItemType `json:"type" bson:"type"`
	ParentID    string   `json:"parentId,omitempty" bson:"parentId,omitempty"`
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// ProducesEventID links a Command or Policy to the Event it produces.
	ProducesEventID string `json:"producesEventId,omitempty" bson:"producesEventId,omitempty"`

	// Attributes carries a read model's structured field names.
	Attributes []string `json:"attributes,omitempty" bson:"attributes,omitempty"`

	// LinkedDiagramRef names an external diagram attached to an aggregate.
	LinkedDiagramRef string `json:"linkedDiagramRef,omitempty" bson:"linkedDiagramRef,omitempty"`
}

// Right returns the x coordinate of the item's right edge.
func (it *Item) Right() float64 { return it.X + it.Width }

// Bottom returns the y coordinate of the item's bottom edge.
func (it *Item) Bottom() float64 { return it.Y + it.Height }

// Key returns the merge identity of the item.
func (it *Item) Key() Key { return Key{Type: it.Type, Name: it.Name} }

// Connection links a source Event to a target Command, Policy, or ReadModel
// in a different context.
type Connection struct {
	ID         string         `json:"id" bson:"id"`
	FromItemID string         `json:"fromItemId" bson:"fromItemId"`
	ToItemID   string         `json:"toItemId" bson:"toItemId"`
	Type       ConnectionType `json:"type" bson:"type"`
}

// Board is a complete persisted diagram.
type Board struct {
	InstanceName string       `json:"instanceName" bson:"instanceName"`
	Items        []Item       `json:"items" bson:"items"`
	Connections  []Connection `json:"connections" bson:"connections"`
}

// Key is the stable merge identity of an item. Renaming an item changes its
// key and severs the link to its prior id and position.
type Key struct {
	Type ItemType
	Name string
}

// =============================================================================
// Lookup Helpers
// =============================================================================

// Index returns a lookup table from item id to item.
// The returned pointers alias the board's slice; mutations are visible.
func (b *Board) Index() map[string]*Item {
	idx := make(map[string]*Item, len(b.Items))
	for i := range b.Items {
		idx[b.Items[i].ID] = &b.Items[i]
	}
	return idx
}

// KeyIndex returns a lookup table from merge key to item.
// On duplicate keys the first item wins, matching merge semantics.
func (b *Board) KeyIndex() map[Key]*Item {
	idx := make(map[Key]*Item, len(b.Items))
	for i := range b.Items {
		k := b.Items[i].Key()
		if _, seen := idx[k]; !seen {
			idx[k] = &b.Items[i]
		}
	}
	return idx
}

// Children returns the items whose ParentID equals boxID, in board order.
func (b *Board) Children(boxID string) []*Item {
	var kids []*Item
	for i := range b.Items {
		if b.Items[i].ParentID == boxID {
			kids = append(kids, &b.Items[i])
		}
	}
	return kids
}

// MaxSeq returns the largest integer sequence found in any item id.
//
// Ids are normally of the form "item-N", but prior snapshots may carry ids
// from other tooling ("a1", "42"). Any trailing run of digits counts, so a
// fresh id counter seeded at MaxSeq()+1 never collides with a reused id.
func (b *Board) MaxSeq() int {
	maxSeq := 0
	for i := range b.Items {
		if n, ok := trailingInt(b.Items[i].ID); ok && n > maxSeq {
			maxSeq = n
		}
	}
	return maxSeq
}

// trailingInt parses the trailing decimal run of s.
func trailingInt(s string) (int, bool) {
	end := len(s)
	start := end
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	// Cap the run so absurd ids cannot overflow.
	if end-start > 9 {
		start = end - 9
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
