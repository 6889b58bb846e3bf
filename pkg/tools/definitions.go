package tools

import "github.com/teslashibe/go-kiosk/pkg/inference"

type definition struct {
	kind        Kind
	description string
	properties  map[string]interface{}
	required    []string
}

var itemName = map[string]interface{}{
	"type":        "string",
	"description": "Exact name of the menu item.",
}

var definitions = []definition{
	{
		kind:        KindGetMainDishes,
		description: "Retrieve available main dishes and their prices.",
	},
	{
		kind:        KindGetSides,
		description: "Retrieve available side dishes and their prices.",
	},
	{
		kind:        KindGetBeverages,
		description: "Retrieve available beverages and their prices.",
	},
	{
		kind: KindAddItem,
		description: "Add an item to the cart. Use this function when a customer wants to add an item to their order. " +
			"If quantity is not specified by the user, ask for it before adding the item.",
		properties: map[string]interface{}{
			"item_name": itemName,
			"quantity": map[string]interface{}{
				"type":        "integer",
				"description": "The quantity of the item to add. Defaults to 1.",
			},
		},
		required: []string{"item_name"},
	},
	{
		kind:        KindRemoveItem,
		description: "Remove an item from the cart. Use this function when a customer wants to remove an item from their order.",
		properties: map[string]interface{}{
			"item_name": itemName,
			"quantity": map[string]interface{}{
				"type":        "integer",
				"description": "The quantity of the item to remove. Defaults to 1.",
			},
			"remove_all": map[string]interface{}{
				"type":        "boolean",
				"description": "If true, removes every unit of item_name from the cart.",
			},
		},
		required: []string{"item_name"},
	},
	{
		kind:        KindModifyQuantity,
		description: "Modify the quantity of an item in the cart. Use this function when a customer wants to change the quantity of an item in their order.",
		properties: map[string]interface{}{
			"item_name": itemName,
			"new_quantity": map[string]interface{}{
				"type":        "integer",
				"description": "The new quantity for the item. Zero removes it.",
			},
		},
		required: []string{"item_name", "new_quantity"},
	},
	{
		kind:        KindGetCartContents,
		description: "Get the current contents of the cart along with the total price. Use this function when a customer wants to review their current order.",
	},
	{
		kind:        KindConfirmOrder,
		description: "Confirm and finalize the order. Use this function when a customer is ready to place their order, then gracefully greet the customer and end the conversation.",
	},
}

// Definitions returns the tool declarations sent with every completion.
func Definitions() []inference.Tool {
	out := make([]inference.Tool, 0, len(definitions))
	for _, d := range definitions {
		props := d.properties
		if props == nil {
			props = map[string]interface{}{}
		}
		params := map[string]interface{}{
			"type":       "object",
			"properties": props,
		}
		if len(d.required) > 0 {
			params["required"] = d.required
		}
		out = append(out, inference.NewTool(d.kind.String(), d.description, params))
	}
	return out
}
