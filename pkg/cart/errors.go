package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound indicates the requested item is not on the menu.
	ErrItemNotFound = errors.New("cart: item not found on the menu")

	// ErrInvalidQuantity indicates an add of fewer than one unit.
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
)

// ItemNotFoundError names the item that could not be found.
type ItemNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("cart: item %q not found on the menu", e.Name)
}

// Is matches ErrItemNotFound.
func (e *ItemNotFoundError) Is(target error) bool {
	return target == ErrItemNotFound
}
