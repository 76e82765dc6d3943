package model

const (
	CategoryWork     = "work"
	CategoryPersonal = "personal"
	CategoryShopping = "shopping"
	CategoryHealth   = "health"
)

type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Categories lists the recognized categories in display order.
var Categories = []Category{
	{Value: CategoryWork, Label: "Work"},
	{Value: CategoryPersonal, Label: "Personal"},
	{Value: CategoryShopping, Label: "Shopping"},
	{Value: CategoryHealth, Label: "Health"},
}

// LookupCategory returns the recognized category for value.
func LookupCategory(value string) (Category, bool) {
	for _, c := range Categories {
		if c.Value == value {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryLabel returns the display label for value, or value itself when
// the category is not recognized.
func CategoryLabel(value string) string {
	if c, ok := LookupCategory(value); ok {
		return c.Label
	}
	return value
}
