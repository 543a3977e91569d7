package engine

import "github.com/sells-group/leads-cli/internal/model"

// Paginate returns page number page (1-based) of the leads, pageSize records
// per page, clipped to the input bounds. Out-of-range pages and non-positive
// page or pageSize values return an empty slice, never an error — pagination
// parameters come straight from user input.
func Paginate(leads []*model.Lead, pageSize, page int) []*model.Lead {
	if pageSize < 1 || page < 1 {
		return []*model.Lead{}
	}
	start := (page - 1) * pageSize
	if start >= len(leads) {
		return []*model.Lead{}
	}
	end := start + pageSize
	if end > len(leads) {
		end = len(leads)
	}
	return leads[start:end]
}

// PageCount returns ceil(nItems/pageSize). Zero items is zero pages, not one
// empty page: callers distinguish "no results" from "a page with nothing on
// it". A non-positive pageSize also yields zero.
func PageCount(nItems, pageSize int) int {
	if nItems <= 0 || pageSize < 1 {
		return 0
	}
	return (nItems + pageSize - 1) / pageSize
}
