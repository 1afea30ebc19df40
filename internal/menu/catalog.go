package menu

import (
	"sort"
	"strings"
)

// Catalog is the guest-facing view of a restaurant's menu: available items
// partitioned into drinks and food, with their category axes. The two axes are
// independent; filtering drinks never affects the food partition.
type Catalog struct {
	Items           []*MenuItem `json:"items"`
	Drinks          []*MenuItem `json:"drinks"`
	Food            []*MenuItem `json:"food"`
	DrinkCategories []string    `json:"drink_categories"`
	FoodCategories  []string    `json:"food_categories"`
}

// BuildCatalog normalizes and partitions a restaurant's items. Unavailable
// items are dropped before classification.
func BuildCatalog(items []*MenuItem) *Catalog {
	c := &Catalog{}
	for _, item := range items {
		if !item.Available {
			continue
		}
		item.Normalize()
		c.Items = append(c.Items, item)
		if item.Type == TypeDrink {
			c.Drinks = append(c.Drinks, item)
		} else {
			c.Food = append(c.Food, item)
		}
	}
	c.DrinkCategories = categoriesOf(c.Drinks)
	c.FoodCategories = categoriesOf(c.Food)
	return c
}

func categoriesOf(items []*MenuItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	sort.Strings(out)
	return out
}

// CategoryAll passes every category through the filter.
const CategoryAll = "all"

// Filter narrows items to one category (exact match, "all" passes everything)
// and a case-insensitive search term matched as a substring over the
// concatenated name, description and long description.
func Filter(items []*MenuItem, category, search string) []*MenuItem {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []*MenuItem
	for _, item := range items {
		if category != "" && category != CategoryAll && item.Category != category {
			continue
		}
		if search != "" {
			txt := strings.ToLower(item.Name + " " + item.Description + " " + item.LongDescription)
			if !strings.Contains(txt, search) {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}
