package domain

// MenuItem is a pizza as listed by the ordering backend. Read-only once fetched.
type MenuItem struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Money  `json:"price"`
	Vegetarian  bool   `json:"vegetarian"`
	Spicy       bool   `json:"spicy"`
	ImageURL    string `json:"image_url,omitempty"`
}

// NewMenuItem is the body used to create a menu entry on the backend.
type NewMenuItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Money  `json:"price"`
	Vegetarian  bool   `json:"vegetarian"`
	Spicy       bool   `json:"spicy"`
	ImageURL    string `json:"image_url,omitempty"`
}
