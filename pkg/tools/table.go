// Package tools maps the operations the agent may call onto the cart and
// menu, rendering every result as a YAML document for the model.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-kiosk/pkg/cart"
	"github.com/teslashibe/go-kiosk/pkg/inference"
	"github.com/teslashibe/go-kiosk/pkg/menu"
)

// Result statuses reported to hooks.
const (
	StatusOK       = "ok"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Result is the outcome of one dispatched call.
type Result struct {
	Kind      Kind
	Content   string
	Confirmed bool
	Status    string
}

// Event describes a dispatched call for side-effect hooks.
type Event struct {
	Kind   Kind
	Status string
	// Phrase is the intermediate phrase category to play, or empty.
	Phrase string
	// Action is the display action tag.
	Action string
}

// Hook observes dispatched calls. It runs inline and must not block.
type Hook interface {
	ToolInvoked(ctx context.Context, ev Event)
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, ev Event)

// ToolInvoked calls f.
func (f HookFunc) ToolInvoked(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// Option configures a Table.
type Option func(*Table)

// WithHook adds a side-effect hook. Hooks run in registration order.
func WithHook(h Hook) Option {
	return func(t *Table) {
		if h != nil {
			t.hooks = append(t.hooks, h)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// Table dispatches tool calls against one cart.
type Table struct {
	cart   *cart.Cart
	hooks  []Hook
	logger *slog.Logger
}

// New creates a dispatch table bound to c.
func New(c *cart.Cart, opts ...Option) *Table {
	t := &Table{
		cart:   c,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", "tools.table")
	return t
}

// Definitions returns the declarations for every tool in the table.
func (t *Table) Definitions() []inference.Tool {
	return Definitions()
}

// Cart returns the bound cart.
func (t *Table) Cart() *cart.Cart {
	return t.cart
}

// Dispatch runs one tool call. An unknown tool name is the only error;
// bad arguments and missing items come back as error documents.
func (t *Table) Dispatch(ctx context.Context, call inference.ToolCall) (Result, error) {
	kind, ok := ParseKind(call.Name)
	if !ok {
		return Result{}, &UnknownToolError{Name: call.Name}
	}

	args, err := parseArgs(call.Arguments)
	if err != nil {
		t.logger.Warn("malformed tool arguments", "tool", call.Name, "error", err)
		return t.finish(ctx, Result{
			Kind:    kind,
			Content: errorDoc(fmt.Sprintf("Invalid arguments: %v", err)),
			Status:  StatusError,
		}), nil
	}

	var res Result
	switch kind {
	case KindGetMainDishes:
		res = t.listCategory(menu.MainDishes)
	case KindGetSides:
		res = t.listCategory(menu.Sides)
	case KindGetBeverages:
		res = t.listCategory(menu.Beverages)
	case KindAddItem:
		res = t.addItem(args)
	case KindRemoveItem:
		res = t.removeItem(args)
	case KindModifyQuantity:
		res = t.modifyQuantity(args)
	case KindGetCartContents:
		res = t.cartContents()
	case KindConfirmOrder:
		res = t.confirmOrder()
	}
	res.Kind = kind

	t.logger.Debug("tool dispatched", "tool", call.Name, "status", res.Status)
	return t.finish(ctx, res), nil
}

func (t *Table) finish(ctx context.Context, res Result) Result {
	ev := Event{Kind: res.Kind, Status: res.Status, Action: res.Kind.DisplayAction()}
	if res.Status == StatusOK {
		ev.Phrase = res.Kind.PhraseCategory()
	}
	for _, h := range t.hooks {
		h.ToolInvoked(ctx, ev)
	}
	return res
}

type listedItem struct {
	Name         string `yaml:"name"`
	PricePerUnit string `yaml:"price_per_unit"`
}

func (t *Table) listCategory(cat menu.Category) Result {
	items := t.cart.Catalog().Category(cat)
	listed := make([]listedItem, len(items))
	for i, it := range items {
		listed[i] = listedItem{Name: it.Name, PricePerUnit: it.Price.String()}
	}
	return Result{Content: marshal(listed), Status: StatusOK}
}

type addDoc struct {
	Name          string `yaml:"name"`
	TotalQuantity int    `yaml:"total_quantity"`
	PricePerUnit  string `yaml:"price_per_unit"`
}

func (t *Table) addItem(args arguments) Result {
	name, err := args.requireString("item_name")
	if err != nil {
		return Result{Content: errorDoc(err.Error()), Status: StatusError}
	}
	qty, err := args.intOr("quantity", 1)
	if err != nil {
		return Result{Content: errorDoc(err.Error()), Status: StatusError}
	}

	added, err := t.cart.Add(name, qty)
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		return Result{Content: errorDoc("Item not found from the menu."), Status: StatusNotFound}
	case errors.Is(err, cart.ErrInvalidQuantity):
		return Result{Content: errorDoc("Quantity must be at least 1."), Status: StatusError}
	case err != nil:
		return Result{Content: errorDoc(err.Error()), Status: StatusError}
	}

	return Result{
		Content: marshal(addDoc{
			Name:          added.Name,
			TotalQuantity: added.TotalQuantity,
			PricePerUnit:  added.UnitPrice.String(),
		}),
		Status: StatusOK,
	}
}

type removeDoc struct {
	Name              string `yaml:"name"`
	Status            string `yaml:"status"`
	RemainingQuantity int    `yaml:"remaining_quantity,omitempty"`
}

func (t *Table) removeItem(args arguments) Result {
	name, err := args.requireString("item_name")
	if err != nil {
		return Result{Content: errorDoc(err.Error()), Status: StatusError}
	}
	qty, err := args.intOr("quantity", 1)
	if err != nil {
		return Result{Content: errorDoc(err.Error()), Status: StatusError}
	}
	all, err := args.boolOr("remove_all", false)
	if err != nil {
		return Result{Content: errorDoc(err.Error()), Status: StatusError}
	}

	r := t.cart.Remove(name, qty, all)
	status := StatusOK
	if r.Status == cart.RemoveNotFound {
		status = StatusNotFound
	}
	return Result{
		Content: marshal(removeDoc{Name: r.Name, Status: string(r.Status), RemainingQuantity: r.Remaining}),
		Status:  status,
	}
}

type modifyDoc struct {
	Name        string `yaml:"name"`
	Status      string `yaml:"status"`
	NewQuantity int    `yaml:"new_quantity,omitempty"`
}

func (t *Table) modifyQuantity(args arguments) Result {
	name, err := args.requireString("item_name")
	if err != nil {
		return Result{Content: errorDoc(err.Error()), Status: StatusError}
	}
	if _, ok := args["new_quantity"]; !ok {
		return Result{Content: errorDoc("new_quantity is required"), Status: StatusError}
	}
	qty, err := args.intOr("new_quantity", 0)
	if err != nil {
		return Result{Content: errorDoc(err.Error()), Status: StatusError}
	}

	m := t.cart.Modify(name, qty)
	status := StatusOK
	if m.Status == cart.ModifyNotFound {
		status = StatusNotFound
	}
	return Result{
		Content: marshal(modifyDoc{Name: m.Name, Status: string(m.Status), NewQuantity: m.Quantity}),
		Status:  status,
	}
}

// EmptyCartMessage is returned by get_cart_contents for an empty cart.
const EmptyCartMessage = "The cart is currently empty."

type contentLine struct {
	Name     string `yaml:"name"`
	Quantity int    `yaml:"quantity"`
	Price    string `yaml:"price"`
}

type contentsDoc struct {
	Items []contentLine `yaml:"items"`
	Total string        `yaml:"total"`
}

func (t *Table) cartContents() Result {
	c := t.cart.Contents()
	if c.Empty() {
		return Result{Content: EmptyCartMessage, Status: StatusOK}
	}
	doc := contentsDoc{
		Items: make([]contentLine, len(c.Lines)),
		Total: "Total Price of items: " + c.Total.String(),
	}
	for i, l := range c.Lines {
		doc.Items[i] = contentLine{Name: l.Name, Quantity: l.Quantity, Price: l.Total().String()}
	}
	return Result{Content: marshal(doc), Status: StatusOK}
}

type confirmedLine struct {
	Name     string `yaml:"name"`
	Quantity int    `yaml:"quantity"`
}

type confirmDoc struct {
	Status  string          `yaml:"status"`
	Message string          `yaml:"message"`
	Items   []confirmedLine `yaml:"items"`
	Total   string          `yaml:"total"`
}

func (t *Table) confirmOrder() Result {
	conf := t.cart.Confirm()
	doc := confirmDoc{
		Status:  "confirmed",
		Message: conf.Message,
		Items:   make([]confirmedLine, len(conf.Lines)),
		Total:   conf.Total.String(),
	}
	for i, l := range conf.Lines {
		doc.Items[i] = confirmedLine{Name: l.Name, Quantity: l.Quantity}
	}
	return Result{Content: marshal(doc), Confirmed: true, Status: StatusOK}
}

func errorDoc(msg string) string {
	return marshal(map[string]string{"error": msg})
}

func marshal(v interface{}) string {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %q", err.Error())
	}
	return string(out)
}

// arguments holds decoded call arguments. Models are loose with types,
// so numbers and booleans may arrive as strings.
type arguments map[string]interface{}

func parseArgs(raw string) (arguments, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return arguments{}, nil
	}
	var args arguments
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = arguments{}
	}
	return args, nil
}

func (a arguments) requireString(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func (a arguments) intOr(key string, def int) (int, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%s must be an integer", key)
}

func (a arguments) boolOr(key string, def bool) (bool, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("%s must be a boolean", key)
		}
		return parsed, nil
	}
	return false, fmt.Errorf("%s must be a boolean", key)
}
