package menu

import "errors"

var (
	// ErrEmptyName indicates an item without a name.
	ErrEmptyName = errors.New("menu: item name is required")

	// ErrDuplicateItem indicates two items share a name.
	ErrDuplicateItem = errors.New("menu: duplicate item")

	// ErrNegativePrice indicates a price below zero.
	ErrNegativePrice = errors.New("menu: negative price")

	// ErrUnknownCategory indicates a category outside main dishes, sides and beverages.
	ErrUnknownCategory = errors.New("menu: unknown category")
)
