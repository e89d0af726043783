package models

// Category is a chess.com speed category tracked by the rating updater.
type Category string

const (
	CategoryRapid  Category = "rapid"
	CategoryBlitz  Category = "blitz"
	CategoryBullet Category = "bullet"
)

// Categories returns the tracked categories in stable display order.
func Categories() []Category {
	return []Category{CategoryRapid, CategoryBlitz, CategoryBullet}
}

// ParseCategory maps a string onto a known Category.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryRapid, CategoryBlitz, CategoryBullet:
		return Category(s), true
	}
	return "", false
}

func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

func (c Category) String() string {
	return string(c)
}
