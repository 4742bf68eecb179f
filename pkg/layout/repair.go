package layout

import (
	"sort"

	"github.com/stormboard/stormboard/pkg/board"
)

// =============================================================================
// Containment Repair
// =============================================================================

// repairPrecedence orders detached children when they are re-stacked.
var repairPrecedence = map[board.ItemType]int{
	board.TypeCommand:   0,
	board.TypePolicy:    1,
	board.TypeAggregate: 2,
	board.TypeEvent:     3,
	board.TypeReadModel: 4,
}

// Repair restores the containment invariant: after the merge, every child
// sits fully inside its context box.
//
// Children partially overlapping their box grow the box minimally to enclose
// them. Children fully outside are re-stacked as a single column below the
// box's current content, ordered by type precedence (Command, Policy,
// Aggregate, Event, ReadModel), and the box grows to fit. Running Repair on
// an already-repaired board changes nothing.
func Repair(b *board.Board) {
	for i := range b.Items {
		box := &b.Items[i]
		if box.Type != board.TypeContextBox {
			continue
		}
		repairBox(b, box)
	}
}

func repairBox(b *board.Board, box *board.Item) {
	children := b.Children(box.ID)

	// Classify against the box bounds as they were before any growth.
	var attached, detached []*board.Item
	for _, child := range children {
		if overlaps(child, box) {
			attached = append(attached, child)
		} else {
			detached = append(detached, child)
		}
	}

	contentBottom := box.Y + Padding
	for _, child := range attached {
		enclose(box, child)
		if child.Bottom() > contentBottom {
			contentBottom = child.Bottom()
		}
	}

	sort.SliceStable(detached, func(i, j int) bool {
		return repairPrecedence[detached[i].Type] < repairPrecedence[detached[j].Type]
	})

	y := contentBottom
	for _, child := range detached {
		y += VGap
		child.X = box.X + Padding
		child.Y = y
		y += child.Height

		if needed := child.Bottom() + Padding - box.Y; needed > box.Height {
			box.Height = needed
		}
		if needed := child.Right() + Padding - box.X; needed > box.Width {
			box.Width = needed
		}
	}
}

// overlaps reports whether the child's rectangle intersects the box on both
// axes. A child touching only an edge does not overlap.
func overlaps(child, box *board.Item) bool {
	overlapX := child.X < box.Right() && child.Right() > box.X
	overlapY := child.Y < box.Bottom() && child.Bottom() > box.Y
	return overlapX && overlapY
}

// enclose grows the box minimally so the child's full bounds fit inside it.
// The origin may move left or up; the far edges may move right or down.
func enclose(box, child *board.Item) {
	if child.X < box.X {
		box.Width += box.X - child.X
		box.X = child.X
	}
	if child.Y < box.Y {
		box.Height += box.Y - child.Y
		box.Y = child.Y
	}
	if child.Right() > box.Right() {
		box.Width = child.Right() - box.X
	}
	if child.Bottom() > box.Bottom() {
		box.Height = child.Bottom() - box.Y
	}
}
