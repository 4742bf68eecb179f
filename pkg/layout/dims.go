package layout

import (
	"github.com/stormboard/stormboard/pkg/board"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Geometry constants, in pixels.
const (
	// Padding is the inset between a context box edge and its content.
	Padding = 50.0

	// HGap separates columns inside a context.
	HGap = 50.0

	// VGap separates stacked items inside a column.
	VGap = 30.0

	// ContextHGap separates successive context boxes.
	ContextHGap = 50.0

	// Global item size bounds.
	MinWidth  = 160.0
	MaxWidth  = 320.0
	MinHeight = 80.0
	MaxHeight = 240.0

	// CollapseThreshold is how far left of its ideal x a prior position may
	// sit before the prior layout is considered collapsed and discarded.
	CollapseThreshold = 50.0
)

// Content growth factors.
const (
	widthPerNameRune  = 6.0
	heightPerDescLine = 18.0
	descLineRunes     = 40
	heightPerField    = 12.0
	maxFieldHeight    = 60.0
)

// baseSize returns the per-kind base dimensions. Policy and ReadModel are the
// widest and tallest by default, Event the narrowest.
func baseSize(kind board.ItemType) (w, h float64) {
	switch kind {
	case board.TypeCommand:
		return 220, 100
	case board.TypeAggregate:
		return 260, 100
	case board.TypeEvent:
		return 200, 100
	case board.TypePolicy:
		return 240, 110
	case board.TypeReadModel:
		return 240, 110
	default:
		return MinWidth, MinHeight
	}
}

// =============================================================================
// Dimension Calculator
// =============================================================================

// Dimensions computes an item's width and height from its kind and content.
//
// Pure and deterministic: identical inputs always yield identical output, and
// longer content never shrinks a dimension. Both results are clamped to the
// global bounds.
func Dimensions(kind board.ItemType, name, description string, fieldCount int) (width, height float64) {
	width, height = baseSize(kind)

	nameLen := len([]rune(name))
	if grown := min(MaxWidth, MinWidth+float64(nameLen)*widthPerNameRune); grown > width {
		width = grown
	}

	descLen := len([]rune(description))
	if descLen > 0 {
		lines := (descLen + descLineRunes - 1) / descLineRunes
		if lines > 1 {
			height += float64(lines-1) * heightPerDescLine
		}
	}

	if fieldCount > 0 {
		height += min(maxFieldHeight, float64(fieldCount)*heightPerField)
	}

	width = clamp(width, MinWidth, MaxWidth)
	height = clamp(height, MinHeight, MaxHeight)
	return width, height
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
