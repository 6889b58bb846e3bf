package menu

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileItem is the on-disk shape of one menu entry.
type fileItem struct {
	Name  string  `yaml:"name"`
	Price float64 `yaml:"price"`
	Image string  `yaml:"image,omitempty"`
}

// fileMenu is the on-disk shape of a menu file.
type fileMenu struct {
	MainDishes []fileItem `yaml:"main_dishes"`
	Sides      []fileItem `yaml:"sides"`
	Beverages  []fileItem `yaml:"beverages"`
}

// Load reads a YAML menu file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("menu: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a YAML menu document:
//
//	main_dishes:
//	  - name: Zinger Burger
//	    price: 3.49
//	sides: [...]
//	beverages: [...]
func Decode(r io.Reader) (*Catalog, error) {
	var fm fileMenu
	if err := yaml.NewDecoder(r).Decode(&fm); err != nil {
		return nil, fmt.Errorf("menu: decode: %w", err)
	}

	var items []Item
	add := func(cat Category, entries []fileItem) {
		for _, e := range entries {
			items = append(items, Item{
				Name:     e.Name,
				Price:    PriceFromFloat(e.Price),
				Image:    e.Image,
				Category: cat,
			})
		}
	}
	add(MainDishes, fm.MainDishes)
	add(Sides, fm.Sides)
	add(Beverages, fm.Beverages)

	return NewCatalog(items)
}

// Encode writes the catalog as a YAML menu document.
func (c *Catalog) Encode(w io.Writer) error {
	var fm fileMenu
	for _, it := range c.items {
		e := fileItem{Name: it.Name, Price: it.Price.Float(), Image: it.Image}
		switch it.Category {
		case MainDishes:
			fm.MainDishes = append(fm.MainDishes, e)
		case Sides:
			fm.Sides = append(fm.Sides, e)
		case Beverages:
			fm.Beverages = append(fm.Beverages, e)
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return fmt.Errorf("menu: encode: %w", err)
	}
	return enc.Close()
}
