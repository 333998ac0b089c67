package repository

// ListOptions contains common pagination, search and sort parameters
type ListOptions struct {
	Search         string
	OrderBy        string
	OrderDirection string
	Page           int
	PageSize       int
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Normalize clamps paging values into their allowed ranges.
func (o *ListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = defaultPageSize
	}
	if o.PageSize > maxPageSize {
		o.PageSize = maxPageSize
	}
	if o.OrderDirection != "DESC" && o.OrderDirection != "desc" {
		o.OrderDirection = "ASC"
	} else {
		o.OrderDirection = "DESC"
	}
}

// Offset returns the row offset for the current page.
func (o *ListOptions) Offset() int {
	return (o.Page - 1) * o.PageSize
}
