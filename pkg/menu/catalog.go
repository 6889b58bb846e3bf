package menu

import (
	"fmt"
	"strings"
)

// Catalog is an immutable registry of menu items.
// It is safe for concurrent use since nothing mutates it after construction.
type Catalog struct {
	items  []Item
	byName map[string]int
}

// NewCatalog builds a catalog from items.
// Names must be unique and non-empty, prices non-negative and categories known.
func NewCatalog(items []Item) (*Catalog, error) {
	c := &Catalog{
		items:  make([]Item, 0, len(items)),
		byName: make(map[string]int, len(items)),
	}
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return nil, ErrEmptyName
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNegativePrice, it.Name)
		}
		if !it.Category.Valid() {
			return nil, fmt.Errorf("%w: %q for %s", ErrUnknownCategory, it.Category, it.Name)
		}
		if _, dup := c.byName[it.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, it.Name)
		}
		if it.Image == "" {
			it.Image = "images/" + Slug(it.Name) + ".jpg"
		}
		c.byName[it.Name] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on error.
func MustCatalog(items []Item) *Catalog {
	c, err := NewCatalog(items)
	if err != nil {
		panic(err)
	}
	return c
}

// FindByName returns the item with exactly this name.
func (c *Catalog) FindByName(name string) (Item, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Items returns all items in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Category returns the items of one category in catalog order.
func (c *Catalog) Category(cat Category) []Item {
	var out []Item
	for _, it := range c.items {
		if it.Category == cat {
			out = append(out, it)
		}
	}
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Prompt renders the catalog for the system prompt:
//
//	Available Main Dishes:
//		1. Name: Zinger Burger, Price per unit: 3.49
func (c *Catalog) Prompt() string {
	var b strings.Builder
	for i, cat := range Categories {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatCategory(cat, c.Category(cat)))
	}
	return b.String()
}

// FormatCategory renders one category block.
func FormatCategory(cat Category, items []Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Available %s:", cat.Title())
	for i, it := range items {
		fmt.Fprintf(&b, "\n\t%d. Name: %s, Price per unit: %.2f", i+1, it.Name, it.Price.Float())
	}
	return b.String()
}
