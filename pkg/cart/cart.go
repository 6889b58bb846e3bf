// Package cart implements the order cart: one line per distinct menu item,
// priced from the catalog, with a total that is always recomputed.
package cart

import (
	"sync"

	"github.com/teslashibe/go-kiosk/pkg/menu"
)

// Action tags a cart operation for the display and audio layers.
type Action string

const (
	ActionAdd      Action = "add_item_to_cart"
	ActionRemove   Action = "remove_item_from_cart"
	ActionModify   Action = "modify_item_quantity_in_cart"
	ActionContents Action = "get_cart_contents"
	ActionConfirm  Action = "confirm_order"
)

// ConfirmationMessage is the fixed text carried by every confirmation.
const ConfirmationMessage = "Your order has been confirmed."

// Line is one order line.
type Line struct {
	Name      string     `json:"name"`
	UnitPrice menu.Price `json:"unit_price"`
	Quantity  int        `json:"quantity"`
	Image     string     `json:"image"`
}

// Total returns unit price times quantity.
func (l Line) Total() menu.Price {
	return l.UnitPrice.Times(l.Quantity)
}

// Notifier is told about every state change or reported read.
// Implementations must return quickly; the cart calls them inline.
type Notifier interface {
	CartChanged(action Action, lines []Line)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(action Action, lines []Line)

// CartChanged calls f.
func (f NotifierFunc) CartChanged(action Action, lines []Line) {
	f(action, lines)
}

// Cart is the order state for a single customer session.
type Cart struct {
	catalog  *menu.Catalog
	notifier Notifier

	mu    sync.Mutex
	lines []Line
}

// New creates an empty cart priced from catalog.
// notifier may be nil.
func New(catalog *menu.Catalog, notifier Notifier) *Cart {
	return &Cart{catalog: catalog, notifier: notifier}
}

// SetNotifier replaces the notifier.
func (c *Cart) SetNotifier(n Notifier) {
	c.mu.Lock()
	c.notifier = n
	c.mu.Unlock()
}

// Catalog returns the catalog the cart prices from.
func (c *Cart) Catalog() *menu.Catalog {
	return c.catalog
}

// AddResult reports the line after an add.
type AddResult struct {
	Name          string
	TotalQuantity int
	UnitPrice     menu.Price
}

// Add adds quantity units of the named item. Repeated adds accumulate on one line.
func (c *Cart) Add(name string, quantity int) (AddResult, error) {
	if quantity < 1 {
		return AddResult{}, ErrInvalidQuantity
	}
	item, ok := c.catalog.FindByName(name)
	if !ok {
		return AddResult{}, &ItemNotFoundError{Name: name}
	}

	c.mu.Lock()
	i := c.indexLocked(name)
	if i >= 0 {
		c.lines[i].Quantity += quantity
	} else {
		c.lines = append(c.lines, Line{
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  quantity,
			Image:     item.Image,
		})
		i = len(c.lines) - 1
	}
	res := AddResult{
		Name:          c.lines[i].Name,
		TotalQuantity: c.lines[i].Quantity,
		UnitPrice:     c.lines[i].UnitPrice,
	}
	c.mu.Unlock()

	c.notify(ActionAdd)
	return res, nil
}

// RemoveStatus is the outcome of Remove.
type RemoveStatus string

const (
	RemoveNotFound   RemoveStatus = "not_found"
	FullyRemoved     RemoveStatus = "fully_removed"
	PartiallyRemoved RemoveStatus = "partially_removed"
)

// RemoveResult reports what Remove did.
type RemoveResult struct {
	Name      string
	Status    RemoveStatus
	Remaining int
}

// Remove takes quantity units off the named line. The line is deleted when
// removeAll is set or quantity covers the whole line. Quantities below one
// are treated as one.
func (c *Cart) Remove(name string, quantity int, removeAll bool) RemoveResult {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	i := c.indexLocked(name)
	if i < 0 {
		c.mu.Unlock()
		return RemoveResult{Name: name, Status: RemoveNotFound}
	}

	var res RemoveResult
	if removeAll || c.lines[i].Quantity <= quantity {
		c.deleteLocked(i)
		res = RemoveResult{Name: name, Status: FullyRemoved}
	} else {
		c.lines[i].Quantity -= quantity
		res = RemoveResult{Name: name, Status: PartiallyRemoved, Remaining: c.lines[i].Quantity}
	}
	c.mu.Unlock()

	c.notify(ActionRemove)
	return res
}

// ModifyStatus is the outcome of Modify.
type ModifyStatus string

const (
	ModifyNotFound ModifyStatus = "not_found"
	Removed        ModifyStatus = "removed"
	Updated        ModifyStatus = "updated"
)

// ModifyResult reports what Modify did.
type ModifyResult struct {
	Name     string
	Status   ModifyStatus
	Quantity int
}

// Modify sets the quantity of the named line. Zero or less deletes it.
func (c *Cart) Modify(name string, quantity int) ModifyResult {
	c.mu.Lock()
	i := c.indexLocked(name)
	if i < 0 {
		c.mu.Unlock()
		return ModifyResult{Name: name, Status: ModifyNotFound}
	}

	var res ModifyResult
	if quantity <= 0 {
		c.deleteLocked(i)
		res = ModifyResult{Name: name, Status: Removed}
	} else {
		c.lines[i].Quantity = quantity
		res = ModifyResult{Name: name, Status: Updated, Quantity: quantity}
	}
	c.mu.Unlock()

	c.notify(ActionModify)
	return res
}

// Contents is a snapshot of the cart.
type Contents struct {
	Lines []Line
	Total menu.Price
}

// Empty reports whether the snapshot has no lines.
func (c Contents) Empty() bool {
	return len(c.Lines) == 0
}

// Contents returns the current lines and grand total.
func (c *Cart) Contents() Contents {
	snap := c.snapshot()
	c.notify(ActionContents)
	return snap
}

// Confirmation summarizes the order at the moment of confirmation.
type Confirmation struct {
	Message string
	Lines   []Line
	Total   menu.Price
}

// Confirm returns the confirmation payload. The cart is left untouched;
// the caller clears it once the confirmation has been surfaced.
func (c *Cart) Confirm() Confirmation {
	snap := c.snapshot()
	c.notify(ActionConfirm)
	return Confirmation{
		Message: ConfirmationMessage,
		Lines:   snap.Lines,
		Total:   snap.Total,
	}
}

// Reset empties the cart. It is idempotent and does not notify.
func (c *Cart) Reset() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Lines returns a copy of the current lines without notifying.
func (c *Cart) Lines() []Line {
	return c.snapshot().Lines
}

// Total returns the grand total without notifying.
func (c *Cart) Total() menu.Price {
	return c.snapshot().Total
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Cart) snapshot() Contents {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return Contents{Lines: lines, Total: TotalOf(lines)}
}

// TotalOf sums unit price times quantity over lines.
func TotalOf(lines []Line) menu.Price {
	var total menu.Price
	for _, l := range lines {
		total += l.Total()
	}
	return total
}

func (c *Cart) notify(action Action) {
	c.mu.Lock()
	n := c.notifier
	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	c.mu.Unlock()

	if n != nil {
		n.CartChanged(action, lines)
	}
}

func (c *Cart) indexLocked(name string) int {
	for i, l := range c.lines {
		if l.Name == name {
			return i
		}
	}
	return -1
}

func (c *Cart) deleteLocked(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}
