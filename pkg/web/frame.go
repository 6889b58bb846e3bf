package web

import (
	"time"

	"github.com/teslashibe/go-kiosk/pkg/cart"
	"github.com/teslashibe/go-kiosk/pkg/menu"
)

// Frame is a rendering-agnostic snapshot of what the display shows.
type Frame struct {
	SessionID  string        `json:"session_id"`
	Started    bool          `json:"started"`
	Action     string        `json:"action,omitempty"`
	Menu       []MenuSection `json:"menu,omitempty"`
	Cart       []FrameLine   `json:"cart"`
	TotalPrice string        `json:"total_price"`
	Messages   []Turn        `json:"messages"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// FrameLine is one cart line as displayed.
type FrameLine struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
	Image     string `json:"image"`
}

// Turn is one transcript entry.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MenuSection is one menu category as displayed.
type MenuSection struct {
	Category string     `json:"category"`
	Title    string     `json:"title"`
	Items    []MenuItem `json:"items"`
}

// MenuItem is one orderable item as displayed.
type MenuItem struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Image string `json:"image"`
}

// CartLines converts cart lines for display.
func CartLines(lines []cart.Line) []FrameLine {
	out := make([]FrameLine, len(lines))
	for i, l := range lines {
		out[i] = FrameLine{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.String(),
			LineTotal: l.Total().String(),
			Image:     l.Image,
		}
	}
	return out
}

// MenuSections converts a catalog for display, in category order.
func MenuSections(c *menu.Catalog) []MenuSection {
	sections := make([]MenuSection, 0, len(menu.Categories))
	for _, cat := range menu.Categories {
		items := c.Category(cat)
		section := MenuSection{
			Category: string(cat),
			Title:    cat.Title(),
			Items:    make([]MenuItem, len(items)),
		}
		for i, it := range items {
			section.Items[i] = MenuItem{Name: it.Name, Price: it.Price.String(), Image: it.Image}
		}
		sections = append(sections, section)
	}
	return sections
}
