package menu

// DefaultItems is the built-in drive-thru menu.
func DefaultItems() []Item {
	return []Item{
		{Name: "KFC Special Chizza", Price: 370, Category: MainDishes},
		{Name: "Zinger Burger", Price: 349, Category: MainDishes},
		{Name: "Hot and Saucy Chicken", Price: 410, Category: MainDishes},
		{Name: "Chicken Crispy Tender Hot Dog", Price: 470, Category: MainDishes},
		{Name: "KFC Chicken Drumstick Bucket 12pc", Price: 610, Category: MainDishes},

		{Name: "Coleslaw", Price: 199, Category: Sides},
		{Name: "French Fries", Price: 249, Category: Sides},
		{Name: "Mac and Cheese Bowl", Price: 299, Category: Sides},
		{Name: "Cream Cheese Mashed Potatoes", Price: 229, Category: Sides},

		{Name: "Pepsi", Price: 141, Category: Beverages},
		{Name: "Iced Tea", Price: 113, Category: Beverages},
		{Name: "Mountain Dew", Price: 153, Category: Beverages},
	}
}

// Default returns a catalog of DefaultItems.
func Default() *Catalog {
	return MustCatalog(DefaultItems())
}
