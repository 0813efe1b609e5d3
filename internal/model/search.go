package model

import "time"

// SortColumn names a sortable field. Only the constants below are honored;
// anything else sorts by DateKey.
type SortColumn string

const (
	SortDateKey   SortColumn = "DateKey"
	SortTitle     SortColumn = "Title"
	SortCreatedAt SortColumn = "CreatedAt"
	SortUpdatedAt SortColumn = "UpdatedAt"
)

// SearchSpec is a declarative filter, sort and page request.
type SearchSpec struct {
	TitleContains string
	From          *time.Time // inclusive, by date key
	To            *time.Time // inclusive, by date key
	Moods         []string   // OR-matched against primary and secondary moods
	Tags          []string   // OR-matched, exact token
	Sort          SortColumn
	Ascending     bool
	Page          int // 1-based
	PageSize      int
}

// SearchResult is one page of matches plus the total match count.
type SearchResult struct {
	Items      []JournalEntry `json:"items"`
	TotalCount int            `json:"totalCount"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
}

// TotalPages is the number of pages needed for TotalCount (at least 1).
func (r *SearchResult) TotalPages() int {
	if r.PageSize <= 0 || r.TotalCount == 0 {
		return 1
	}
	return (r.TotalCount + r.PageSize - 1) / r.PageSize
}
