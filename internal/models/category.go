package models

// Category is the fixed classification offered when listing an item
type Category string

const (
	CategoryFashion     Category = "fashion"
	CategoryToys        Category = "toys"
	CategoryElectronics Category = "electronics"
	CategoryHome        Category = "home"
	CategorySports      Category = "sports"
	CategoryBooks       Category = "books"
	CategoryOther       Category = "other"
)

// CategoryInfo pairs a category code with its display name
type CategoryInfo struct {
	Code Category `json:"code"`
	Name string   `json:"name"`
}

var categories = []CategoryInfo{
	{CategoryFashion, "Fashion"},
	{CategoryToys, "Toys"},
	{CategoryElectronics, "Electronics"},
	{CategoryHome, "Home"},
	{CategorySports, "Sports"},
	{CategoryBooks, "Books"},
	{CategoryOther, "Other"},
}

// Categories returns a copy of the known categories in display order
func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), categories...)
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := c.DisplayName()
	return ok
}

// DisplayName returns the human-facing name of c
func (c Category) DisplayName() (string, bool) {
	for _, info := range categories {
		if info.Code == c {
			return info.Name, true
		}
	}
	return "", false
}
