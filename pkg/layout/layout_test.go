package layout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/concept"
)

// orderModel is the single-context scenario: one aggregate, one command with
// an explicit produced event, and that event.
func orderModel() concept.Model {
	return concept.Model{
		ProjectName: "Online Shop",
		Contexts: []concept.Context{
			{
				Name:       "OrderContext",
				Commands:   []concept.Item{{Name: "PlaceOrder", ProducedEventName: "OrderPlaced"}},
				Events:     []concept.Item{{Name: "OrderPlaced"}},
				Aggregates: []concept.Item{{Name: "Order"}},
			},
		},
	}
}

func findByName(b *board.Board, name string) *board.Item {
	for i := range b.Items {
		if b.Items[i].Name == name {
			return &b.Items[i]
		}
	}
	return nil
}

func TestLayoutEndToEnd(t *testing.T) {
	b, warnings := NewEngine(nil).Layout(orderModel(), nil)

	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if b.InstanceName != "online-shop" {
		t.Errorf("InstanceName = %q", b.InstanceName)
	}
	if len(b.Items) != 4 {
		t.Fatalf("len(Items) = %d, want 4 (box + 3 items)", len(b.Items))
	}
	if len(b.Connections) != 0 {
		t.Errorf("single context must yield zero connections, got %d", len(b.Connections))
	}

	// Resolution order: box first, then left, center, right columns.
	wantOrder := []string{"OrderContext", "PlaceOrder", "Order", "OrderPlaced"}
	wantIDs := []string{"item-1", "item-2", "item-3", "item-4"}
	for i, it := range b.Items {
		if it.Name != wantOrder[i] || it.ID != wantIDs[i] {
			t.Errorf("Items[%d] = %s/%s, want %s/%s", i, it.ID, it.Name, wantIDs[i], wantOrder[i])
		}
	}

	cmd := findByName(b, "PlaceOrder")
	event := findByName(b, "OrderPlaced")
	if cmd.ProducesEventID != event.ID {
		t.Errorf("ProducesEventID = %q, want %q", cmd.ProducesEventID, event.ID)
	}

	agg := findByName(b, "Order")
	if agg.LinkedDiagramRef != "order-uml" {
		t.Errorf("LinkedDiagramRef = %q, want order-uml", agg.LinkedDiagramRef)
	}

	if err := b.Validate(); err != nil {
		t.Errorf("output board should validate: %v", err)
	}
}

func TestLayoutColumnGeometry(t *testing.T) {
	b, _ := NewEngine(nil).Layout(orderModel(), nil)

	box := findByName(b, "OrderContext")
	cmd := findByName(b, "PlaceOrder")   // left, 220 wide
	agg := findByName(b, "Order")        // center, 260 wide
	event := findByName(b, "OrderPlaced") // right, 226 wide

	// Inner width 220+50+260+50+226 = 806, inner height 100.
	if box.Width != 906 || box.Height != 200 {
		t.Errorf("box = %v x %v, want 906 x 200", box.Width, box.Height)
	}
	if cmd.X != 50 || cmd.Y != 50 {
		t.Errorf("command at (%v,%v), want (50,50)", cmd.X, cmd.Y)
	}
	if agg.X != 320 {
		t.Errorf("aggregate x = %v, want 320", agg.X)
	}
	if event.X != 630 {
		t.Errorf("event x = %v, want 630", event.X)
	}

	for _, it := range []*board.Item{cmd, agg, event} {
		if it.ParentID != box.ID {
			t.Errorf("%s parent = %q, want %q", it.Name, it.ParentID, box.ID)
		}
	}
}

func TestLayoutOmitsEmptyColumns(t *testing.T) {
	m := concept.Model{
		ProjectName: "Two Columns",
		Contexts: []concept.Context{
			{
				Name:     "Ctx",
				Commands: []concept.Item{{Name: "DoThing"}},
				Events:   []concept.Item{{Name: "ThingDone"}},
			},
		},
	}
	b, _ := NewEngine(nil).Layout(m, nil)

	cmd := findByName(b, "DoThing")
	event := findByName(b, "ThingDone")

	// With no aggregates the right column follows the left directly:
	// 50 + 220 + 50, not 50 + 220 + 50 + blank + 50.
	if event.X != cmd.X+cmd.Width+HGap {
		t.Errorf("event x = %v, want %v", event.X, cmd.X+cmd.Width+HGap)
	}
}

func TestLayoutSuccessiveContexts(t *testing.T) {
	m := concept.Model{
		ProjectName: "Multi",
		Contexts: []concept.Context{
			{Name: "A", Events: []concept.Item{{Name: "UserRegistered"}}},
			{Name: "B", Policies: []concept.Item{{Name: "SendWelcomeEmail"}}},
		},
	}
	b, _ := NewEngine(nil).Layout(m, nil)

	boxA := findByName(b, "A")
	boxB := findByName(b, "B")
	if boxB.X != boxA.Width+ContextHGap {
		t.Errorf("second box x = %v, want %v", boxB.X, boxA.Width+ContextHGap)
	}
}

// mergeModel has two left-column items so the aggregate's ideal x lands at
// 326: left column width max(220, 226) = 226, so center starts at
// 50 + 226 + 50.
func mergeModel() concept.Model {
	return concept.Model{
		ProjectName: "Online Shop",
		Contexts: []concept.Context{
			{
				Name:       "OrderContext",
				Commands:   []concept.Item{{Name: "PlaceOrder"}, {Name: "CancelOrder"}},
				Aggregates: []concept.Item{{Name: "Order"}},
				Events:     []concept.Item{{Name: "OrderPlaced"}},
			},
		},
	}
}

func TestLayoutLinksDiagramPerAggregate(t *testing.T) {
	m := concept.Model{
		ProjectName: "Online Shop",
		Contexts: []concept.Context{
			{
				Name:       "OrderContext",
				Aggregates: []concept.Item{{Name: "Order"}, {Name: "Payment Method"}},
			},
		},
	}
	b, _ := NewEngine(nil).Layout(m, nil)

	// Each aggregate links its own diagram, named after the aggregate, not
	// the project.
	if agg := findByName(b, "Order"); agg.LinkedDiagramRef != "order-uml" {
		t.Errorf("Order ref = %q, want order-uml", agg.LinkedDiagramRef)
	}
	if agg := findByName(b, "Payment Method"); agg.LinkedDiagramRef != "payment-method-uml" {
		t.Errorf("Payment Method ref = %q, want payment-method-uml", agg.LinkedDiagramRef)
	}
}

func TestLayoutPreservesPriorDiagramRef(t *testing.T) {
	prior := &board.Board{
		Items: []board.Item{
			{ID: "a1", Type: board.TypeAggregate, Name: "Order", X: 300, Y: 300,
				Width: 260, Height: 100, LinkedDiagramRef: "custom-ref"},
		},
	}

	b, _ := NewEngine(nil).Layout(mergeModel(), prior)

	if agg := findByName(b, "Order"); agg.LinkedDiagramRef != "custom-ref" {
		t.Errorf("ref = %q, prior ref must survive the merge", agg.LinkedDiagramRef)
	}
}

func TestLayoutIdentityPreservation(t *testing.T) {
	prior := &board.Board{
		InstanceName: "online-shop",
		Items: []board.Item{
			{ID: "a1", Type: board.TypeAggregate, Name: "Order", X: 300, Y: 300, Width: 260, Height: 100},
		},
	}

	b, _ := NewEngine(nil).Layout(mergeModel(), prior)

	agg := findByName(b, "Order")
	if agg.ID != "a1" {
		t.Errorf("aggregate id = %q, want reused a1", agg.ID)
	}
	// Prior x 300 vs ideal 326 is within the collapse threshold, so the
	// user's position survives.
	if agg.X != 300 || agg.Y != 300 {
		t.Errorf("aggregate at (%v,%v), want (300,300)", agg.X, agg.Y)
	}

	// Fresh ids are seeded above the prior maximum sequence (a1 -> 1).
	box := findByName(b, "OrderContext")
	if box.ID != "item-2" {
		t.Errorf("box id = %q, want item-2", box.ID)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("merged board should validate: %v", err)
	}
}

func TestLayoutCollapseSelfHeal(t *testing.T) {
	prior := &board.Board{
		Items: []board.Item{
			{ID: "a1", Type: board.TypeAggregate, Name: "Order", X: 10, Y: 300, Width: 260, Height: 100},
		},
	}

	b, _ := NewEngine(nil).Layout(mergeModel(), prior)

	agg := findByName(b, "Order")
	if agg.ID != "a1" {
		t.Errorf("aggregate id = %q, want reused a1", agg.ID)
	}
	// Prior x 10 is more than 50 left of the ideal 326: the prior layout is
	// collapsed and the ideal position wins.
	// Inner height is 230 (two stacked commands), so the centered single
	// aggregate sits at y = 50 + (230-100)/2.
	if agg.X != 326 || agg.Y != 115 {
		t.Errorf("aggregate at (%v,%v), want ideal (326,115)", agg.X, agg.Y)
	}
}

func TestLayoutLeftColumnKeepsPriorVerbatim(t *testing.T) {
	prior := &board.Board{
		Items: []board.Item{
			// Far left of ideal; a center-column item would be healed.
			{ID: "c7", Type: board.TypeCommand, Name: "PlaceOrder", X: 60, Y: 160, Width: 220, Height: 100},
		},
	}

	b, _ := NewEngine(nil).Layout(mergeModel(), prior)

	cmd := findByName(b, "PlaceOrder")
	if cmd.ID != "c7" {
		t.Errorf("command id = %q, want reused c7", cmd.ID)
	}
	if cmd.X != 60 || cmd.Y != 160 {
		t.Errorf("command at (%v,%v), want prior (60,160)", cmd.X, cmd.Y)
	}
}

func TestLayoutCrossContextConnection(t *testing.T) {
	m := concept.Model{
		ProjectName: "Welcome",
		Contexts: []concept.Context{
			{Name: "UserContext", Events: []concept.Item{{Name: "UserRegistered"}}},
			{Name: "NotificationContext", Policies: []concept.Item{{Name: "SendWelcomeEmail"}}},
		},
		Connections: []concept.ConnectionSpec{
			{FromName: "UserRegistered", ToName: "SendWelcomeEmail", Type: concept.ConnectionFlow},
		},
	}

	b, warnings := NewEngine(nil).Layout(m, nil)

	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if len(b.Connections) != 1 {
		t.Fatalf("len(Connections) = %d, want 1", len(b.Connections))
	}

	conn := b.Connections[0]
	event := findByName(b, "UserRegistered")
	policy := findByName(b, "SendWelcomeEmail")
	if conn.FromItemID != event.ID || conn.ToItemID != policy.ID {
		t.Errorf("connection = %+v", conn)
	}
	if conn.ID != "conn-"+event.ID+"-"+policy.ID {
		t.Errorf("connection id = %q", conn.ID)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("board should validate: %v", err)
	}
}

func TestLayoutDropsUnresolvedConnectionWithWarning(t *testing.T) {
	m := orderModel()
	m.Connections = []concept.ConnectionSpec{
		{FromName: "NoSuchEvent", ToName: "PlaceOrder", Type: concept.ConnectionFlow},
	}

	b, warnings := NewEngine(nil).Layout(m, nil)

	if len(b.Connections) != 0 {
		t.Errorf("unresolved connection should be dropped")
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "NoSuchEvent") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestLayoutDropsSameContextConnectionSilently(t *testing.T) {
	m := orderModel()
	m.Connections = []concept.ConnectionSpec{
		{FromName: "OrderPlaced", ToName: "PlaceOrder", Type: concept.ConnectionFlow},
	}

	b, warnings := NewEngine(nil).Layout(m, nil)

	if len(b.Connections) != 0 {
		t.Errorf("same-context connection should be dropped")
	}
	if len(warnings) != 0 {
		t.Errorf("same-context drops are silent, got %v", warnings)
	}
}

func TestLayoutUnresolvedProducedEventWarns(t *testing.T) {
	m := orderModel()
	m.Contexts[0].Commands[0].ProducedEventName = "NeverHappened"

	b, warnings := NewEngine(nil).Layout(m, nil)

	if cmd := findByName(b, "PlaceOrder"); cmd.ProducesEventID != "" {
		t.Errorf("ProducesEventID = %q, want empty", cmd.ProducesEventID)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "NeverHappened") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestLayoutDeterminism(t *testing.T) {
	m := concept.Model{
		ProjectName: "Deterministic",
		Contexts: []concept.Context{
			{
				Name:       "A",
				Commands:   []concept.Item{{Name: "CreateUser"}, {Name: "DeleteUser"}},
				Events:     []concept.Item{{Name: "UserCreated"}, {Name: "UserDeleted"}},
				Aggregates: []concept.Item{{Name: "User"}},
			},
			{
				Name:     "B",
				Policies: []concept.Item{{Name: "SendWelcomeEmail"}},
			},
		},
		Connections: []concept.ConnectionSpec{
			{FromName: "UserCreated", ToName: "SendWelcomeEmail", Type: concept.ConnectionFlow},
		},
	}

	engine := NewEngine(nil)
	b1, _ := engine.Layout(m, nil)
	b2, _ := engine.Layout(m, nil)

	data1, err := board.Marshal(b1)
	if err != nil {
		t.Fatal(err)
	}
	data2, err := board.Marshal(b2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data1, data2) {
		t.Error("identical inputs must yield byte-identical boards")
	}
}

func TestLayoutContainmentAfterRepair(t *testing.T) {
	// A prior position far outside any box forces the repair path.
	prior := &board.Board{
		Items: []board.Item{
			{ID: "a1", Type: board.TypeAggregate, Name: "Order", X: 5000, Y: 5000, Width: 260, Height: 100},
		},
	}

	b, _ := NewEngine(nil).Layout(mergeModel(), prior)

	idx := b.Index()
	for _, it := range b.Items {
		if it.Type == board.TypeContextBox || it.ParentID == "" {
			continue
		}
		box := idx[it.ParentID]
		inside := it.X >= box.X && it.Y >= box.Y && it.Right() <= box.Right() && it.Bottom() <= box.Bottom()
		if !inside {
			t.Errorf("item %s (%v,%v,%v,%v) escapes box %s (%v,%v,%v,%v)",
				it.Name, it.X, it.Y, it.Width, it.Height,
				box.Name, box.X, box.Y, box.Width, box.Height)
		}
	}
}

func TestRepairIdempotent(t *testing.T) {
	prior := &board.Board{
		Items: []board.Item{
			{ID: "a1", Type: board.TypeAggregate, Name: "Order", X: 5000, Y: 5000, Width: 260, Height: 100},
			{ID: "c2", Type: board.TypeCommand, Name: "PlaceOrder", X: -400, Y: 90, Width: 220, Height: 100},
		},
	}
	b, _ := NewEngine(nil).Layout(mergeModel(), prior)

	before, err := board.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	Repair(b)
	after, err := board.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("repairing an already-repaired board must change nothing")
	}
}

func TestRepairGrowsBoxForPartialOverlap(t *testing.T) {
	b := &board.Board{
		Items: []board.Item{
			{ID: "box", Type: board.TypeContextBox, Name: "Ctx", X: 0, Y: 0, Width: 400, Height: 300},
			// Sticks out 100px to the right.
			{ID: "e1", Type: board.TypeEvent, ParentID: "box", Name: "E", X: 300, Y: 50, Width: 200, Height: 100},
		},
	}

	Repair(b)

	box := b.Items[0]
	child := b.Items[1]
	if child.X != 300 || child.Y != 50 {
		t.Errorf("partially overlapping child must not move, got (%v,%v)", child.X, child.Y)
	}
	if box.Right() < child.Right() {
		t.Errorf("box right %v does not enclose child right %v", box.Right(), child.Right())
	}
}

func TestRepairRestacksDetachedByPrecedence(t *testing.T) {
	b := &board.Board{
		Items: []board.Item{
			{ID: "box", Type: board.TypeContextBox, Name: "Ctx", X: 0, Y: 0, Width: 400, Height: 300},
			{ID: "e1", Type: board.TypeEvent, ParentID: "box", Name: "E", X: 900, Y: 900, Width: 200, Height: 100},
			{ID: "c1", Type: board.TypeCommand, ParentID: "box", Name: "C", X: 900, Y: 700, Width: 220, Height: 100},
			{ID: "g1", Type: board.TypeAggregate, ParentID: "box", Name: "A", X: 900, Y: 800, Width: 260, Height: 100},
		},
	}

	Repair(b)

	idx := b.Index()
	cmd, agg, event := idx["c1"], idx["g1"], idx["e1"]

	// Command, then Aggregate, then Event, regardless of prior order.
	if !(cmd.Y < agg.Y && agg.Y < event.Y) {
		t.Errorf("precedence order violated: command %v, aggregate %v, event %v", cmd.Y, agg.Y, event.Y)
	}
	for _, it := range []*board.Item{cmd, agg, event} {
		if it.X != Padding {
			t.Errorf("restacked child x = %v, want %v", it.X, Padding)
		}
	}

	box := idx["box"]
	if box.Bottom() < event.Bottom()+Padding {
		t.Errorf("box did not grow to fit restacked children")
	}
}

func TestWithInferStrategy(t *testing.T) {
	never := func(string, []EventRef) (EventRef, bool) { return EventRef{}, false }
	m := orderModel()
	m.Contexts[0].Commands[0].ProducedEventName = ""

	b, _ := NewEngine(nil, WithInferStrategy(never)).Layout(m, nil)
	if cmd := findByName(b, "PlaceOrder"); cmd.ProducesEventID != "" {
		t.Errorf("custom strategy should have been used")
	}
}

func TestDefaultInferStrategy(t *testing.T) {
	candidates := []EventRef{
		{Name: "PaymentFailed", ID: "e1"},
		{Name: "OrderPlaced", ID: "e2"},
	}

	ref, ok := DefaultInferStrategy("PlaceOrder", candidates)
	if !ok || ref.ID != "e2" {
		t.Errorf("PlaceOrder should infer OrderPlaced, got %+v ok=%v", ref, ok)
	}

	if _, ok := DefaultInferStrategy("ShipOrder", candidates); ok {
		t.Error("ShipOrder matches no known verb pair")
	}

	if _, ok := DefaultInferStrategy("CancelOrder", nil); ok {
		t.Error("no candidates means no match")
	}
}
