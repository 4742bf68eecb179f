package layout

import (
	"fmt"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/concept"
)

// =============================================================================
// Identity Merge Resolver
// =============================================================================

// layoutContext carries the mutable resolution state through the pipeline
// stages: the fresh-id counter and the lookup tables consumed by connection
// resolution and containment repair.
type layoutContext struct {
	nextID int

	// nameToID maps item names to resolved ids. First resolution wins, so
	// duplicate names across contexts bind deterministically.
	nameToID map[string]string

	// eventNameToID is nameToID restricted to Event items, for explicit
	// produced-event lookups.
	eventNameToID map[string]string

	// idToContext maps every resolved item id to its containing box id.
	// Context boxes map to their own id.
	idToContext map[string]string

	// contextEvents lists each box's resolved events in board order, the
	// candidate set for produced-event inference.
	contextEvents map[string][]EventRef

	// producedName maps a resolved item id to its declared producedEventName.
	producedName map[string]string
}

func newLayoutContext(prior *board.Board) *layoutContext {
	seed := 1
	if prior != nil {
		seed = prior.MaxSeq() + 1
	}
	return &layoutContext{
		nextID:        seed,
		nameToID:      make(map[string]string),
		eventNameToID: make(map[string]string),
		idToContext:   make(map[string]string),
		contextEvents: make(map[string][]EventRef),
		producedName:  make(map[string]string),
	}
}

// freshID allocates a previously-unused id. The counter is seeded above the
// prior board's maximum sequence, so reused and fresh ids never collide.
func (lc *layoutContext) freshID() string {
	id := fmt.Sprintf("item-%d", lc.nextID)
	lc.nextID++
	return id
}

// resolveContext merges one packed context against the prior board and
// appends the resolved items: the box first, then its children in column
// order.
//
// Identity is recovered by (type, name). A recovered left-column item keeps
// its prior position verbatim. Recovered center, right, and box items keep
// their prior position unless it sits more than CollapseThreshold left of the
// freshly computed ideal x, in which case the prior layout is considered
// collapsed and the ideal position wins.
func resolveContext(p packedContext, prior map[board.Key]*board.Item, lc *layoutContext) []board.Item {
	boxItem := resolveItem(p.box, prior, lc)
	lc.idToContext[boxItem.ID] = boxItem.ID
	lc.bindName(boxItem.Name, boxItem.ID, boxItem.Type)

	// Children's ideal positions follow the resolved box origin, so a box
	// that kept its prior position carries its column layout with it.
	dx := boxItem.X - p.box.x
	dy := boxItem.Y - p.box.y

	items := []board.Item{boxItem}
	for _, child := range p.children {
		child.x += dx
		child.y += dy
		it := resolveItem(child, prior, lc)
		it.ParentID = boxItem.ID

		if it.Type == board.TypeAggregate && it.LinkedDiagramRef == "" {
			it.LinkedDiagramRef = concept.Slugify(it.Name) + "-uml"
		}

		lc.idToContext[it.ID] = boxItem.ID
		lc.bindName(it.Name, it.ID, it.Type)
		if child.produces != "" {
			lc.producedName[it.ID] = child.produces
		}
		if it.Type == board.TypeEvent {
			lc.contextEvents[boxItem.ID] = append(lc.contextEvents[boxItem.ID], EventRef{Name: it.Name, ID: it.ID})
		}

		items = append(items, it)
	}
	return items
}

// resolveItem assigns the final id and position to a single computed item.
func resolveItem(c computedItem, prior map[board.Key]*board.Item, lc *layoutContext) board.Item {
	it := board.Item{
		Type:        c.kind,
		Name:        c.name,
		Description: c.description,
		Attributes:  c.attributes,
		X:           c.x,
		Y:           c.y,
		Width:       c.width,
		Height:      c.height,
	}

	old, found := prior[board.Key{Type: c.kind, Name: c.name}]
	if !found {
		it.ID = lc.freshID()
		return it
	}

	it.ID = old.ID
	it.LinkedDiagramRef = old.LinkedDiagramRef

	switch c.role {
	case RoleLeft:
		it.X, it.Y = old.X, old.Y
	default:
		if !collapsed(old.X, c.x) {
			it.X, it.Y = old.X, old.Y
		}
	}
	return it
}

// collapsed reports whether a prior x position sits far enough left of the
// ideal x to indicate a corrupted prior layout.
func collapsed(priorX, idealX float64) bool {
	return priorX < idealX-CollapseThreshold
}

func (lc *layoutContext) bindName(name, id string, kind board.ItemType) {
	if _, taken := lc.nameToID[name]; !taken {
		lc.nameToID[name] = id
	}
	if kind == board.TypeEvent {
		if _, taken := lc.eventNameToID[name]; !taken {
			lc.eventNameToID[name] = id
		}
	}
}
