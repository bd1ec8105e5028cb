package view

// Page describes one page of a paginated collection. Start and End are the
// half-open slice bounds into the source data.
type Page struct {
	Number     int
	TotalPages int
	TotalItems int
	Start      int
	End        int
}

// Paginate computes the page slice bounds for a collection of totalItems.
// The requested page is clamped to [1, totalPages]; an empty collection
// yields page 1 of 0 with an empty slice.
func Paginate(totalItems, itemsPerPage, page int) Page {
	if itemsPerPage <= 0 {
		itemsPerPage = 1
	}

	totalPages := (totalItems + itemsPerPage - 1) / itemsPerPage

	valid := page
	switch {
	case totalPages == 0:
		valid = 1
	case page > totalPages:
		valid = totalPages
	case page < 1:
		valid = 1
	}

	start := (valid - 1) * itemsPerPage
	end := start + itemsPerPage
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	return Page{
		Number:     valid,
		TotalPages: totalPages,
		TotalItems: totalItems,
		Start:      start,
		End:        end,
	}
}

// ReanchorPage picks the page under a new page size that keeps the first
// visible item approximately in place.
func ReanchorPage(oldPage, oldItemsPerPage, newItemsPerPage int) int {
	if newItemsPerPage <= 0 {
		return 1
	}
	firstItem := (oldPage-1)*oldItemsPerPage + 1
	page := (firstItem + newItemsPerPage - 1) / newItemsPerPage
	if page < 1 {
		page = 1
	}
	return page
}
