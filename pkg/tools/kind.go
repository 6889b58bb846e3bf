package tools

// Kind enumerates the operations the agent may invoke.
type Kind int

const (
	KindUnknown Kind = iota
	KindGetMainDishes
	KindGetSides
	KindGetBeverages
	KindAddItem
	KindRemoveItem
	KindModifyQuantity
	KindGetCartContents
	KindConfirmOrder
)

var kindNames = [...]string{
	KindUnknown:         "unknown",
	KindGetMainDishes:   "get_main_dishes",
	KindGetSides:        "get_sides",
	KindGetBeverages:    "get_beverages",
	KindAddItem:         "add_item_to_cart",
	KindRemoveItem:      "remove_item_from_cart",
	KindModifyQuantity:  "modify_item_quantity_in_cart",
	KindGetCartContents: "get_cart_contents",
	KindConfirmOrder:    "confirm_order",
}

// Kinds lists every dispatchable kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindGetMainDishes,
		KindGetSides,
		KindGetBeverages,
		KindAddItem,
		KindRemoveItem,
		KindModifyQuantity,
		KindGetCartContents,
		KindConfirmOrder,
	}
}

// String returns the wire name of the tool.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// ParseKind maps a tool name to its Kind.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if kindNames[k] == name {
			return k, true
		}
	}
	return KindUnknown, false
}

// PhraseCategory is the intermediate phrase group played when the tool runs.
// Cart reads have no phrase.
func (k Kind) PhraseCategory() string {
	switch k {
	case KindGetMainDishes:
		return "get_main_dishes"
	case KindGetSides:
		return "get_sides"
	case KindGetBeverages:
		return "get_beverages"
	case KindAddItem:
		return "add_item"
	case KindRemoveItem:
		return "remove_item"
	case KindModifyQuantity:
		return "modify_quantity"
	case KindConfirmOrder:
		return "confirm_order"
	}
	return ""
}

// DisplayAction is the action tag pushed to the display.
func (k Kind) DisplayAction() string {
	switch k {
	case KindGetMainDishes:
		return "show_main_dishes"
	case KindGetSides:
		return "show_side_dishes"
	case KindGetBeverages:
		return "show_beverages"
	}
	return k.String()
}
