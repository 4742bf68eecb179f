package layout

import (
	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/concept"
)

// =============================================================================
// Column Packer
// =============================================================================

// Role is an item's horizontal position class inside its context. The role
// decides which merge rule applies: left-column items always keep their prior
// position, everything else is subject to collapse detection.
type Role int

const (
	RoleLeft Role = iota
	RoleCenter
	RoleRight
	RoleBox
)

// computedItem is an item after sizing and ideal placement, before identity
// resolution. Coordinates are absolute board coordinates.
type computedItem struct {
	kind board.ItemType
	role Role

	name        string
	description string
	produces    string
	attributes  []string

	x, y          float64
	width, height float64
}

// packedContext is one context's ideal layout: the box plus its children in
// resolution order (left column, center, right).
type packedContext struct {
	box      computedItem
	children []computedItem
}

// packContext computes the ideal layout of a single context with its box
// origin at (originX, 0).
//
// Items bucket into three columns: commands and policies on the left,
// aggregates in the center, events and read models on the right. Empty
// columns are omitted from the horizontal sequence entirely. Each column is
// vertically centered as a group within the context's inner height.
func packContext(ctx concept.Context, originX float64) packedContext {
	left := sizeItems(board.TypeCommand, RoleLeft, ctx.Commands)
	left = append(left, sizeItems(board.TypePolicy, RoleLeft, ctx.Policies)...)
	center := sizeItems(board.TypeAggregate, RoleCenter, ctx.Aggregates)
	right := sizeItems(board.TypeEvent, RoleRight, ctx.Events)
	right = append(right, sizeItems(board.TypeReadModel, RoleRight, ctx.ReadModels)...)

	var columns [][]computedItem
	for _, col := range [][]computedItem{left, center, right} {
		if len(col) > 0 {
			columns = append(columns, col)
		}
	}

	innerW, innerH := 0.0, 0.0
	for i, col := range columns {
		if i > 0 {
			innerW += HGap
		}
		innerW += columnWidth(col)
		if h := columnHeight(col); h > innerH {
			innerH = h
		}
	}
	// Floor so an empty context still renders as a visible box.
	if innerW < MinWidth {
		innerW = MinWidth
	}
	if innerH < MinHeight {
		innerH = MinHeight
	}

	p := packedContext{
		box: computedItem{
			kind:        board.TypeContextBox,
			role:        RoleBox,
			name:        ctx.Name,
			description: ctx.Description,
			x:           originX,
			y:           0,
			width:       innerW + 2*Padding,
			height:      innerH + 2*Padding,
		},
	}

	colX := originX + Padding
	for _, col := range columns {
		w := columnWidth(col)
		y := Padding + (innerH-columnHeight(col))/2
		for _, it := range col {
			it.x = colX
			it.y = y
			y += it.height + VGap
			p.children = append(p.children, it)
		}
		colX += w + HGap
	}

	return p
}

// sizeItems converts concept items of one kind into sized computed items.
func sizeItems(kind board.ItemType, role Role, items []concept.Item) []computedItem {
	out := make([]computedItem, 0, len(items))
	for _, it := range items {
		w, h := Dimensions(kind, it.Name, it.Description, len(it.Fields))
		out = append(out, computedItem{
			kind:        kind,
			role:        role,
			name:        it.Name,
			description: it.Description,
			produces:    it.ProducedEventName,
			attributes:  it.Fields,
			width:       w,
			height:      h,
		})
	}
	return out
}

func columnWidth(col []computedItem) float64 {
	w := 0.0
	for _, it := range col {
		if it.width > w {
			w = it.width
		}
	}
	return w
}

func columnHeight(col []computedItem) float64 {
	h := 0.0
	for i, it := range col {
		if i > 0 {
			h += VGap
		}
		h += it.height
	}
	return h
}
