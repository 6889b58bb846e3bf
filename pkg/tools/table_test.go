package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-kiosk/pkg/cart"
	"github.com/teslashibe/go-kiosk/pkg/inference"
	"github.com/teslashibe/go-kiosk/pkg/menu"
)

func newTable(t *testing.T, opts ...Option) (*Table, *cart.Cart) {
	t.Helper()
	c := cart.New(menu.Default(), nil)
	return New(c, opts...), c
}

func call(name, args string) inference.ToolCall {
	return inference.ToolCall{ID: "call-1", Name: name, Arguments: args}
}

func decode(t *testing.T, content string, v interface{}) {
	t.Helper()
	if err := yaml.Unmarshal([]byte(content), v); err != nil {
		t.Fatalf("result is not YAML: %v\n%s", err, content)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("order_pizza"); ok {
		t.Error("ParseKind should reject unknown names")
	}
	if Kind(42).String() != "unknown" {
		t.Errorf("out of range kind = %s", Kind(42).String())
	}
}

func TestDefinitionsCoverEveryKind(t *testing.T) {
	defs := Definitions()
	if len(defs) != len(Kinds()) {
		t.Fatalf("got %d definitions, want %d", len(defs), len(Kinds()))
	}
	for _, d := range defs {
		if _, ok := ParseKind(d.Function.Name); !ok {
			t.Errorf("definition %q has no kind", d.Function.Name)
		}
		if d.Type != "function" {
			t.Errorf("definition %q type = %s", d.Function.Name, d.Type)
		}
		if d.Function.Parameters["type"] != "object" {
			t.Errorf("definition %q parameters not an object schema", d.Function.Name)
		}
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	table, _ := newTable(t)
	_, err := table.Dispatch(context.Background(), call("order_pizza", "{}"))
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
	var ute *UnknownToolError
	if !errors.As(err, &ute) || ute.Name != "order_pizza" {
		t.Errorf("expected UnknownToolError naming the tool, got %v", err)
	}
}

func TestListCategories(t *testing.T) {
	tests := []struct {
		tool   string
		count  int
		first  string
		action string
	}{
		{"get_main_dishes", 5, "KFC Special Chizza", "show_main_dishes"},
		{"get_sides", 4, "Coleslaw", "show_side_dishes"},
		{"get_beverages", 3, "Pepsi", "show_beverages"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			var events []Event
			table, _ := newTable(t, WithHook(HookFunc(func(ctx context.Context, ev Event) {
				events = append(events, ev)
			})))

			res, err := table.Dispatch(context.Background(), call(tt.tool, ""))
			if err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			var items []listedItem
			decode(t, res.Content, &items)
			if len(items) != tt.count {
				t.Fatalf("got %d items, want %d", len(items), tt.count)
			}
			if items[0].Name != tt.first {
				t.Errorf("first item = %s", items[0].Name)
			}
			if !strings.HasPrefix(items[0].PricePerUnit, "$") {
				t.Errorf("price not formatted: %s", items[0].PricePerUnit)
			}
			if len(events) != 1 || events[0].Action != tt.action || events[0].Phrase != tt.tool {
				t.Errorf("unexpected events %+v", events)
			}
		})
	}
}

func TestAddItem(t *testing.T) {
	table, c := newTable(t)
	ctx := context.Background()

	res, err := table.Dispatch(ctx, call("add_item_to_cart", `{"item_name": "Zinger Burger"}`))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	var doc addDoc
	decode(t, res.Content, &doc)
	if doc.TotalQuantity != 1 {
		t.Errorf("default quantity should be 1, got %d", doc.TotalQuantity)
	}
	if doc.PricePerUnit != "$3.49" {
		t.Errorf("price = %s", doc.PricePerUnit)
	}

	res, _ = table.Dispatch(ctx, call("add_item_to_cart", `{"item_name": "Zinger Burger", "quantity": "2"}`))
	decode(t, res.Content, &doc)
	if doc.TotalQuantity != 3 {
		t.Errorf("quantity should accumulate to 3, got %d", doc.TotalQuantity)
	}
	if c.Total() != 1047 {
		t.Errorf("cart total = %d", c.Total())
	}
}

func TestAddItemNotFound(t *testing.T) {
	var events []Event
	table, c := newTable(t, WithHook(HookFunc(func(ctx context.Context, ev Event) {
		events = append(events, ev)
	})))

	res, err := table.Dispatch(context.Background(), call("add_item_to_cart", `{"item_name": "Nonexistent"}`))
	if err != nil {
		t.Fatalf("missing items must not be fatal: %v", err)
	}
	var doc map[string]string
	decode(t, res.Content, &doc)
	if doc["error"] != "Item not found from the menu." {
		t.Errorf("unexpected error doc %v", doc)
	}
	if c.Len() != 0 {
		t.Error("cart should be unchanged")
	}
	if res.Status != StatusNotFound {
		t.Errorf("status = %s", res.Status)
	}
	if len(events) != 1 || events[0].Phrase != "" {
		t.Errorf("a miss should not request a phrase: %+v", events)
	}
}

func TestMalformedArguments(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args string
	}{
		{"bad json", "add_item_to_cart", `{"item_name": `},
		{"missing name", "add_item_to_cart", `{"quantity": 2}`},
		{"name not string", "remove_item_from_cart", `{"item_name": 7}`},
		{"bad quantity", "add_item_to_cart", `{"item_name": "Pepsi", "quantity": "lots"}`},
		{"zero quantity", "add_item_to_cart", `{"item_name": "Pepsi", "quantity": 0}`},
		{"missing new quantity", "modify_item_quantity_in_cart", `{"item_name": "Pepsi"}`},
		{"bad remove_all", "remove_item_from_cart", `{"item_name": "Pepsi", "remove_all": "maybe"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, _ := newTable(t)
			res, err := table.Dispatch(context.Background(), call(tt.tool, tt.args))
			if err != nil {
				t.Fatalf("malformed arguments must not be fatal: %v", err)
			}
			if res.Status != StatusError {
				t.Errorf("status = %s", res.Status)
			}
			if !strings.HasPrefix(res.Content, "error:") {
				t.Errorf("expected error document, got %q", res.Content)
			}
		})
	}
}

func TestRemoveItem(t *testing.T) {
	table, c := newTable(t)
	ctx := context.Background()
	c.Add("French Fries", 3)

	res, _ := table.Dispatch(ctx, call("remove_item_from_cart", `{"item_name": "French Fries"}`))
	var doc removeDoc
	decode(t, res.Content, &doc)
	if doc.Status != "partially_removed" || doc.RemainingQuantity != 2 {
		t.Errorf("unexpected %+v", doc)
	}

	res, _ = table.Dispatch(ctx, call("remove_item_from_cart", `{"item_name": "French Fries", "quantity": 5}`))
	doc = removeDoc{}
	decode(t, res.Content, &doc)
	if doc.Status != "fully_removed" {
		t.Errorf("unexpected %+v", doc)
	}

	res, _ = table.Dispatch(ctx, call("remove_item_from_cart", `{"item_name": "French Fries"}`))
	doc = removeDoc{}
	decode(t, res.Content, &doc)
	if doc.Status != "not_found" || res.Status != StatusNotFound {
		t.Errorf("unexpected %+v / %s", doc, res.Status)
	}
}

func TestModifyQuantity(t *testing.T) {
	table, c := newTable(t)
	ctx := context.Background()
	c.Add("Pepsi", 1)

	res, _ := table.Dispatch(ctx, call("modify_item_quantity_in_cart", `{"item_name": "Pepsi", "new_quantity": 4}`))
	var doc modifyDoc
	decode(t, res.Content, &doc)
	if doc.Status != "updated" || doc.NewQuantity != 4 {
		t.Errorf("unexpected %+v", doc)
	}

	res, _ = table.Dispatch(ctx, call("modify_item_quantity_in_cart", `{"item_name": "Pepsi", "new_quantity": 0}`))
	doc = modifyDoc{}
	decode(t, res.Content, &doc)
	if doc.Status != "removed" || c.Len() != 0 {
		t.Errorf("unexpected %+v", doc)
	}
}

func TestCartContents(t *testing.T) {
	table, c := newTable(t)
	ctx := context.Background()

	res, _ := table.Dispatch(ctx, call("get_cart_contents", "{}"))
	if res.Content != EmptyCartMessage {
		t.Errorf("empty cart content = %q", res.Content)
	}

	c.Add("Zinger Burger", 3)
	c.Add("Pepsi", 1)
	res, _ = table.Dispatch(ctx, call("get_cart_contents", "{}"))
	var doc contentsDoc
	decode(t, res.Content, &doc)
	if len(doc.Items) != 2 {
		t.Fatalf("items = %+v", doc.Items)
	}
	if doc.Items[0].Price != "$10.47" {
		t.Errorf("line total = %s", doc.Items[0].Price)
	}
	if doc.Total != "Total Price of items: $11.88" {
		t.Errorf("total = %s", doc.Total)
	}
}

func TestConfirmOrder(t *testing.T) {
	var events []Event
	table, c := newTable(t, WithHook(HookFunc(func(ctx context.Context, ev Event) {
		events = append(events, ev)
	})))
	c.Add("Zinger Burger", 2)

	res, err := table.Dispatch(context.Background(), call("confirm_order", ""))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Confirmed {
		t.Error("confirm_order must set Confirmed")
	}
	var doc confirmDoc
	decode(t, res.Content, &doc)
	if doc.Status != "confirmed" || doc.Message != cart.ConfirmationMessage {
		t.Errorf("unexpected %+v", doc)
	}
	if len(doc.Items) != 1 || doc.Items[0].Quantity != 2 {
		t.Errorf("items = %+v", doc.Items)
	}
	if c.Len() != 1 {
		t.Error("confirm must not clear the cart")
	}
	if len(events) != 1 || events[0].Phrase != "confirm_order" || events[0].Action != "confirm_order" {
		t.Errorf("events = %+v", events)
	}
}

func TestHooksRunInOrder(t *testing.T) {
	var order []string
	table, _ := newTable(t,
		WithHook(HookFunc(func(ctx context.Context, ev Event) { order = append(order, "a") })),
		WithHook(nil),
		WithHook(HookFunc(func(ctx context.Context, ev Event) { order = append(order, "b") })),
	)
	table.Dispatch(context.Background(), call("get_cart_contents", ""))
	if strings.Join(order, "") != "ab" {
		t.Errorf("hook order = %v", order)
	}
}
