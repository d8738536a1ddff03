// Package paging holds the offset/limit arithmetic shared by bot lists and
// the HTTP API.
package paging

// Count normalizes page against total items and returns it together with the
// number of pages. Out of range pages wrap around, so the result is always a
// valid page (0 when there is nothing to show).
func Count(total int64, size, page int) (int, int) {
	if size <= 0 || total <= 0 {
		return 0, 0
	}
	pages := int((total + int64(size) - 1) / int64(size))
	page %= pages
	if page < 0 {
		page += pages
	}
	return page, pages
}

// Offset is the number of rows to skip for page.
func Offset(size, page int) int {
	if page < 0 || size <= 0 {
		return 0
	}
	return page * size
}

// Prev returns the previous page, wrapping from the first to the last.
func Prev(page, pages int) int {
	if pages <= 0 {
		return 0
	}
	if page <= 0 {
		return pages - 1
	}
	return page - 1
}

// Next returns the next page, wrapping from the last to the first.
func Next(page, pages int) int {
	if pages <= 0 {
		return 0
	}
	return (page + 1) % pages
}

// Visible reports whether pagination controls are needed.
func Visible(pages int) bool {
	return pages > 1
}
