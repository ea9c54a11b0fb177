package domain

// PaginationParams carries page/limit values from the HTTP layer to the stores.
// Page is 1-indexed. Limit is capped at MaxNotifications by NewPaginationParams,
// since no listing can return more than the log retains.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// maxPage is the first page that lies past the retained log at any limit.
// Larger pages return the same empty result, so they are clamped to it.
const maxPage = MaxNotifications + 1

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to page=1, limit=MaxNotifications.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: MaxNotifications}
	if page != nil && *page >= 1 {
		p.Page = min(*page, maxPage)
	}
	if limit != nil && *limit >= 1 && *limit < MaxNotifications {
		p.Limit = *limit
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause. It is
// never negative, even for params not built by NewPaginationParams.
func (p PaginationParams) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	return (min(p.Page, maxPage) - 1) * min(p.Limit, MaxNotifications)
}

// Window returns the [start, end) slice bounds of this page over n items,
// both within [0, n].
func (p PaginationParams) Window(n int) (start, end int) {
	start = min(p.Offset(), n)
	end = start + max(min(p.Limit, n-start), 0)
	return start, end
}
