package products

import "strings"

// Filter narrows a loaded product list by free-text query and archived
// visibility. Pure: the input slice is never mutated. A product matches when
// the query is a case-insensitive substring of its code or description; the
// query is matched as typed, whitespace included. Soft-deleted products only
// appear when showArchived is set.
func Filter(list []Product, query string, showArchived bool) []Product {
	query = strings.ToLower(query)
	result := make([]Product, 0, len(list))
	for _, p := range list {
		if p.IsDeleted && !showArchived {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Code), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		result = append(result, p)
	}
	return result
}
