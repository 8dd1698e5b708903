// Package views implements the read-path composers that join raw entities
// into response-ready aggregates. Composers hold no state between calls and
// receive the caller identity explicitly; personalization fields are false
// for anonymous callers.
package views

// Caller identifies the authenticated user behind a request. The zero value
// means the request is anonymous.
type Caller struct {
	UserID string
}

// Anonymous reports whether no authenticated user is associated with the call.
func (c Caller) Anonymous() bool {
	return c.UserID == ""
}

// SortField names a video attribute the feed can be ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByViews     SortField = "views"
	SortByDuration  SortField = "duration"
	SortByTitle     SortField = "title"
)

// Sort describes the requested feed ordering. The store must apply a
// secondary order on the video identifier so pages are deterministic when
// the sort key has duplicates.
type Sort struct {
	Field SortField
	Desc  bool
}

// ParseSortField maps a query-string value onto a supported sort field.
// Unknown values fall back to creation time.
func ParseSortField(s string) SortField {
	switch SortField(s) {
	case SortByViews:
		return SortByViews
	case SortByDuration:
		return SortByDuration
	case SortByTitle:
		return SortByTitle
	default:
		return SortByCreatedAt
	}
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageRequest selects a page of results. Normalize before use.
type PageRequest struct {
	Number int
	Size   int
}

// Normalize clamps the page request to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// Offset returns the number of rows preceding this page.
func (p PageRequest) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageInfo carries pagination metadata alongside a page of results.
type PageInfo struct {
	TotalItems int64 `json:"totalItems"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPageInfo derives pagination metadata from a total count and the
// normalized page request that produced it.
func NewPageInfo(total int64, p PageRequest) PageInfo {
	size := int64(p.Size)
	pages := (total + size - 1) / size
	return PageInfo{
		TotalItems: total,
		Page:       p.Number,
		PageSize:   p.Size,
		TotalPages: pages,
		HasNext:    int64(p.Number) < pages,
		HasPrev:    p.Number > 1 && total > 0,
	}
}

// FeedQuery is the typed query plan for the video feed: an optional full-text
// search over title and description, an optional owner filter, the sort order,
// and the requested page. Only published videos are ever returned.
type FeedQuery struct {
	Search  string
	OwnerID string
	Sort    Sort
	Page    PageRequest
}
