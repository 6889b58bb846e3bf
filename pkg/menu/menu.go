// Package menu holds the read-only catalog of orderable items.
//
// Items are grouped into exactly three categories (main dishes, sides and
// beverages) and looked up by exact, case-sensitive name.
package menu

import (
	"fmt"
	"math"
	"strings"
)

// Category groups menu items for display and for the listing tools.
type Category string

const (
	MainDishes Category = "main_dishes"
	Sides      Category = "sides"
	Beverages  Category = "beverages"
)

// Categories lists every category in display order.
var Categories = []Category{MainDishes, Sides, Beverages}

// Title returns the human-readable heading for the category.
func (c Category) Title() string {
	switch c {
	case MainDishes:
		return "Main Dishes"
	case Sides:
		return "Side Dishes"
	case Beverages:
		return "Beverages"
	default:
		return string(c)
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Price is an amount in cents.
type Price int64

// PriceFromFloat converts a decimal amount (3.49) to cents, rounding half away from zero.
func PriceFromFloat(f float64) Price {
	return Price(math.Round(f * 100))
}

// Float returns the price as a decimal amount.
func (p Price) Float() float64 {
	return float64(p) / 100
}

// String formats the price as "$3.49".
func (p Price) String() string {
	sign := ""
	if p < 0 {
		sign = "-"
		p = -p
	}
	return fmt.Sprintf("%s$%d.%02d", sign, p/100, p%100)
}

// Times returns the price of n units.
func (p Price) Times(n int) Price {
	return p * Price(n)
}

// Item is a single orderable product.
type Item struct {
	Name     string
	Price    Price
	Image    string
	Category Category
}

// Slug returns a filesystem-friendly version of the item name.
func Slug(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
