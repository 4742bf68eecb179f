// Package nodelink renders a board as a node-link diagram: contexts become
// clusters, items become colored sticky-note nodes, connections become edges.
//
// The DOT output deliberately ignores the board's pixel geometry and lets
// Graphviz lay the graph out; the diagram shows structure and flow, not the
// user's spatial arrangement. The board JSON remains the canonical geometry.
package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/stormboard/stormboard/pkg/board"
)

// Options configures node-link diagram rendering.
type Options struct {
	// ProducesEdges adds dashed edges from commands and policies to the
	// events they produce.
	ProducesEdges bool

	// Detailed appends item descriptions to node labels.
	Detailed bool
}

// Sticky-note fill colors by item type, following EventStorming convention:
// events orange, commands blue, aggregates yellow, policies lilac, read
// models green.
var fillColors = map[board.ItemType]string{
	board.TypeCommand:   "#4FC3F7",
	board.TypeEvent:     "#FFB74D",
	board.TypeAggregate: "#FFF176",
	board.TypePolicy:    "#CE93D8",
	board.TypeReadModel: "#A5D6A7",
	board.TypeError:     "#EF9A9A",
}

// ToDOT converts a board to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(b *board.Board, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph board {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")

	for i := range b.Items {
		box := &b.Items[i]
		if box.Type != board.TypeContextBox {
			continue
		}
		fmt.Fprintf(&buf, "\n  subgraph \"cluster_%s\" {\n", box.ID)
		fmt.Fprintf(&buf, "    label=%q;\n", box.Name)
		buf.WriteString("    style=rounded;\n")
		buf.WriteString("    color=grey;\n")
		for _, child := range b.Children(box.ID) {
			writeNode(&buf, "    ", child, opts)
		}
		buf.WriteString("  }\n")
	}

	// Items outside any context, such as the sentinel error item.
	for i := range b.Items {
		it := &b.Items[i]
		if it.Type == board.TypeContextBox || it.ParentID != "" {
			continue
		}
		writeNode(&buf, "  ", it, opts)
	}

	buf.WriteString("\n")
	for _, conn := range b.Connections {
		switch conn.Type {
		case board.ConnectionRequestResponse:
			fmt.Fprintf(&buf, "  %q -> %q [dir=both, arrowtail=odot];\n", conn.FromItemID, conn.ToItemID)
		default:
			fmt.Fprintf(&buf, "  %q -> %q;\n", conn.FromItemID, conn.ToItemID)
		}
	}

	if opts.ProducesEdges {
		for i := range b.Items {
			it := &b.Items[i]
			if it.ProducesEventID == "" {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=grey];\n", it.ID, it.ProducesEventID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, indent string, it *board.Item, opts Options) {
	label := it.Name
	if opts.Detailed && it.Description != "" {
		label += "\n" + it.Description
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	if color, ok := fillColors[it.Type]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", color))
	} else {
		attrs = append(attrs, "fillcolor=white")
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, it.ID, strings.Join(attrs, ", "))
}
