package model

// Category is an externally-managed label that events may reference.
// The palette editor owns the list; the engine only reads it to resolve
// a category to its color.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ColorFor resolves a category id to its color, falling back to the
// default accent when the id is unknown or empty.
func ColorFor(categories []Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Color
		}
	}
	return DefaultColor
}
