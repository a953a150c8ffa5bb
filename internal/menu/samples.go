package menu

import "github.com/fjod/go_cart/storefront/internal/domain"

// Samples are the pizzas offered when the backend menu is empty.
var Samples = []domain.NewMenuItem{
	{
		Name:        "Margherita",
		Description: "Tomato, mozzarella, fresh basil",
		Price:       domain.MustMoney("10.99"),
		Vegetarian:  true,
		ImageURL:    "https://images.unsplash.com/photo-1544989164-31dc3c645987?q=80&w=800&auto=format&fit=crop",
	},
	{
		Name:        "Pepperoni",
		Description: "Pepperoni, mozzarella, tomato sauce",
		Price:       domain.MustMoney("12.49"),
		ImageURL:    "https://images.unsplash.com/photo-1548365328-9f547fb0957d?q=80&w=800&auto=format&fit=crop",
	},
	{
		Name:        "Diavola",
		Description: "Spicy salami, chili, tomato, mozzarella",
		Price:       domain.MustMoney("13.99"),
		Spicy:       true,
		ImageURL:    "https://images.unsplash.com/photo-1600628421055-4d9d88b91a43?q=80&w=800&auto=format&fit=crop",
	},
}
