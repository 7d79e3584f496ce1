package requestlog

import (
	"context"
	"slices"
	"strings"
	"time"
)

// Sink persists records and serves them back to the admin API.
type Sink interface {
	// Insert stores rec and sets rec.ID.
	Insert(ctx context.Context, rec *Record) error
	// Query returns one page of records matching q and the total match count.
	Query(ctx context.Context, q Query) ([]Record, int64, error)
	// Get returns ErrNotFound when no record has id.
	Get(ctx context.Context, id int64) (Record, error)
	Delete(ctx context.Context, ids ...int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Purger removes records captured before a cutoff.
type Purger interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Paging defaults.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// SortableColumns are the columns a Query may order by.
var SortableColumns = []string{
	ColumnID, ColumnCapturedAt, ColumnOrigin, ColumnTargetPath, ColumnMethod,
	ColumnReferrer, ColumnActorRole, ColumnClientIP, ColumnHost, ColumnDevice,
	ColumnPlatform, ColumnBrowser, ColumnUserAgent, ColumnStatusCode, ColumnCountry,
}

// SearchColumns are the columns a search term is matched against.
var SearchColumns = []string{
	ColumnCapturedAt, ColumnTargetPath, ColumnMethod, ColumnReferrer, ColumnActorRole,
	ColumnClientIP, ColumnUserAgent, ColumnOriginHeader, ColumnStatusCode,
}

// Query selects a page of records.
type Query struct {
	// Search is matched case-insensitively as a substring of SearchColumns.
	Search  string
	OrderBy string
	Desc    bool
	Page    int
	PerPage int
	// IDs restricts the result to these records when not empty.
	IDs []int64
}

// Normalize applies defaults and bounds. Unknown sort columns fall back to
// captured_at descending.
func (q Query) Normalize() Query {
	q.Search = strings.TrimSpace(q.Search)
	if !slices.Contains(SortableColumns, q.OrderBy) {
		q.OrderBy = ColumnCapturedAt
		q.Desc = true
	}
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.PerPage < 1:
		q.PerPage = DefaultPerPage
	case q.PerPage > MaxPerPage:
		q.PerPage = MaxPerPage
	}
	return q
}

// Offset is the number of rows skipped before the current page.
func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// Matches reports whether rec satisfies the search and ID filters of q.
// Backends that cannot push filtering down use it directly.
func (q Query) Matches(rec Record) bool {
	if len(q.IDs) > 0 && !slices.Contains(q.IDs, rec.ID) {
		return false
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	for _, col := range SearchColumns {
		if strings.Contains(strings.ToLower(rec.Text(col)), needle) {
			return true
		}
	}
	return false
}
