package nodelink

import (
	"strings"
	"testing"

	"github.com/stormboard/stormboard/pkg/board"
)

func renderBoard() *board.Board {
	return &board.Board{
		InstanceName: "online-shop",
		Items: []board.Item{
			{ID: "item-1", Type: board.TypeContextBox, Name: "OrderContext"},
			{ID: "item-2", Type: board.TypeCommand, ParentID: "item-1", Name: "PlaceOrder", Description: "places an order", ProducesEventID: "item-3"},
			{ID: "item-3", Type: board.TypeEvent, ParentID: "item-1", Name: "OrderPlaced"},
			{ID: "item-4", Type: board.TypeContextBox, Name: "ShippingContext"},
			{ID: "item-5", Type: board.TypePolicy, ParentID: "item-4", Name: "ScheduleShipment"},
		},
		Connections: []board.Connection{
			{ID: "conn-item-3-item-5", FromItemID: "item-3", ToItemID: "item-5", Type: board.ConnectionFlow},
		},
	}
}

func TestToDOTClustersPerContext(t *testing.T) {
	dot := ToDOT(renderBoard(), Options{})

	for _, want := range []string{
		`subgraph "cluster_item-1"`,
		`subgraph "cluster_item-4"`,
		`label="OrderContext"`,
		`label="ShippingContext"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTNodesAndColors(t *testing.T) {
	dot := ToDOT(renderBoard(), Options{})

	if !strings.Contains(dot, `"item-2" [label="PlaceOrder", fillcolor="#4FC3F7"]`) {
		t.Errorf("command node missing or miscolored:\n%s", dot)
	}
	if !strings.Contains(dot, `"item-3" [label="OrderPlaced", fillcolor="#FFB74D"]`) {
		t.Errorf("event node missing or miscolored:\n%s", dot)
	}
}

func TestToDOTConnectionEdges(t *testing.T) {
	dot := ToDOT(renderBoard(), Options{})

	if !strings.Contains(dot, `"item-3" -> "item-5";`) {
		t.Errorf("flow edge missing:\n%s", dot)
	}

	b := renderBoard()
	b.Connections[0].Type = board.ConnectionRequestResponse
	dot = ToDOT(b, Options{})
	if !strings.Contains(dot, `"item-3" -> "item-5" [dir=both`) {
		t.Errorf("request/response edge missing:\n%s", dot)
	}
}

func TestToDOTProducesEdges(t *testing.T) {
	dot := ToDOT(renderBoard(), Options{})
	if strings.Contains(dot, `"item-2" -> "item-3"`) {
		t.Error("produces edges should be off by default")
	}

	dot = ToDOT(renderBoard(), Options{ProducesEdges: true})
	if !strings.Contains(dot, `"item-2" -> "item-3" [style=dashed`) {
		t.Errorf("produces edge missing:\n%s", dot)
	}
}

func TestToDOTDetailedLabels(t *testing.T) {
	dot := ToDOT(renderBoard(), Options{Detailed: true})
	if !strings.Contains(dot, `label="PlaceOrder\nplaces an order"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestToDOTErrorBoard(t *testing.T) {
	dot := ToDOT(board.ErrorBoard("generation failed"), Options{})

	if !strings.Contains(dot, `"item-1" [label="Failed to generate concepts", fillcolor="#EF9A9A"]`) {
		t.Errorf("sentinel node missing:\n%s", dot)
	}
	if strings.Contains(dot, "subgraph") {
		t.Error("error board has no contexts, no clusters expected")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<svg width="8pt" height="6pt" viewBox="0.00 0.00 100.75 60.25" xmlns="http://www.w3.org/2000/svg">ok</svg>`)

	got := string(normalizeViewBox(svg))
	if !strings.Contains(got, `viewBox="0 0 100.75 60.25"`) {
		t.Errorf("viewBox not normalized: %s", got)
	}
	if !strings.Contains(got, `width="101" height="60"`) {
		t.Errorf("pixel dimensions missing: %s", got)
	}

	// SVG without a viewBox passes through untouched.
	plain := []byte("<svg>x</svg>")
	if string(normalizeViewBox(plain)) != "<svg>x</svg>" {
		t.Error("svg without viewBox should pass through")
	}
}
