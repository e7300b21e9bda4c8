package food

import "strings"

const (
	CategoryAll     = "all"
	NotFoundMessage = "No food items found"
)

// FilterByCategory keeps items whose category matches exactly.
// "all" (or an empty category) returns every item.
func FilterByCategory(items []Item, category string) []Item {
	if category == "" || category == CategoryAll {
		return items
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// SearchByName is a case-insensitive substring match on the name.
func SearchByName(items []Item, query string) []Item {
	q := strings.ToLower(query)
	if q == "" {
		return items
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

// Categories lists distinct categories in first-seen order.
func Categories(items []Item) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	return out
}
