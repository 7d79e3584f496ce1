package logstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

const table = "request_logs"

// sqliteTimeLayout sorts lexically and still starts with requestlog.TimeLayout,
// so searching by date prefix works on the stored text.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000"

var insertColumns = []string{
	requestlog.ColumnCapturedAt, requestlog.ColumnOrigin, requestlog.ColumnTargetPath,
	requestlog.ColumnMethod, requestlog.ColumnReferrer, requestlog.ColumnActorRole,
	requestlog.ColumnClientIP, requestlog.ColumnHost, requestlog.ColumnDevice,
	requestlog.ColumnPlatform, requestlog.ColumnBrowser, requestlog.ColumnBrowserVersion,
	requestlog.ColumnUserAgent, requestlog.ColumnOriginHeader, requestlog.ColumnAccept,
	requestlog.ColumnAcceptEncoding, requestlog.ColumnAcceptLanguage,
	requestlog.ColumnContentType, requestlog.ColumnConnection, requestlog.ColumnCacheControl,
	requestlog.ColumnStatusCode, requestlog.ColumnCountry,
}

var selectColumns = append([]string{requestlog.ColumnID}, insertColumns...)

// dialect captures what differs between the PostgreSQL and SQLite schemas.
type dialect struct {
	placeholder func(n int) string
	like        string
	// text renders a column as text for substring search.
	text func(column string) string
	// timeArg converts a timestamp into the stored representation.
	timeArg func(time.Time) any
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	like:        "ILIKE",
	text: func(column string) string {
		switch column {
		case requestlog.ColumnCapturedAt:
			return "to_char(captured_at AT TIME ZONE 'UTC', 'YYYY-MM-DD HH24:MI:SS')"
		case requestlog.ColumnStatusCode:
			return "COALESCE(status_code::text, '')"
		default:
			return "COALESCE(" + column + ", '')"
		}
	},
	timeArg: func(t time.Time) any { return t.UTC() },
}

var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	like:        "LIKE",
	text: func(column string) string {
		if column == requestlog.ColumnStatusCode {
			return "COALESCE(CAST(status_code AS TEXT), '')"
		}
		return "COALESCE(" + column + ", '')"
	},
	timeArg: func(t time.Time) any { return t.UTC().Format(sqliteTimeLayout) },
}

// builder accumulates a statement's arguments and numbers placeholders.
type builder struct {
	d    dialect
	args []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return b.d.placeholder(len(b.args))
}

func (b *builder) insert() string {
	ph := make([]string, len(insertColumns))
	for i := range ph {
		ph[i] = b.d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, joinColumns(insertColumns), strings.Join(ph, ", "))
}

func (b *builder) where(q requestlog.Query) string {
	var conds []string

	if len(q.IDs) > 0 {
		ph := make([]string, len(q.IDs))
		for i, id := range q.IDs {
			ph[i] = b.arg(id)
		}
		conds = append(conds, "id IN ("+strings.Join(ph, ", ")+")")
	}

	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		ors := make([]string, len(requestlog.SearchColumns))
		for i, col := range requestlog.SearchColumns {
			ors[i] = fmt.Sprintf(`%s %s %s ESCAPE '\'`, b.d.text(col), b.d.like, b.arg(pattern))
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// page renders ORDER BY and LIMIT for a normalized query. OrderBy is
// whitelisted by requestlog.Query.Normalize.
func (b *builder) page(q requestlog.Query) string {
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s LIMIT %s OFFSET %s",
		q.OrderBy, dir, dir, b.arg(q.PerPage), b.arg(q.Offset()))
}

func (b *builder) selectPage(q requestlog.Query) (string, []any) {
	stmt := "SELECT " + joinColumns(selectColumns) + " FROM " + table + b.where(q) + b.page(q)
	return stmt, b.args
}

func (b *builder) count(q requestlog.Query) (string, []any) {
	return "SELECT COUNT(*) FROM " + table + b.where(q), b.args
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func insertArgs(d dialect, rec *requestlog.Record) []any {
	var method, accept, contentType, connection, cacheControl *string
	var status *int64
	if t := rec.Transport; t != nil {
		method, accept, contentType = &t.Method, &t.Accept, &t.ContentType
		connection, cacheControl = &t.Connection, &t.CacheControl
		code := int64(t.StatusCode)
		status = &code
	}

	return []any{
		d.timeArg(rec.CapturedAt), rec.Origin.String(), rec.TargetPath,
		method, rec.Referrer, rec.ActorRole,
		rec.ClientIP, rec.Host, rec.Device,
		rec.Platform, rec.Browser, rec.BrowserVersion,
		rec.UserAgent, rec.OriginHeader, accept,
		rec.AcceptEncoding, rec.AcceptLanguage,
		contentType, connection, cacheControl,
		status, rec.Country,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (requestlog.Record, error) {
	var (
		rec                                                requestlog.Record
		capturedAt                                         any
		origin                                             string
		method, accept, contentType, connection, cacheCtrl *string
		status                                             *int64
	)

	err := s.Scan(
		&rec.ID, &capturedAt, &origin, &rec.TargetPath,
		&method, &rec.Referrer, &rec.ActorRole,
		&rec.ClientIP, &rec.Host, &rec.Device,
		&rec.Platform, &rec.Browser, &rec.BrowserVersion,
		&rec.UserAgent, &rec.OriginHeader, &accept,
		&rec.AcceptEncoding, &rec.AcceptLanguage,
		&contentType, &connection, &cacheCtrl,
		&status, &rec.Country,
	)
	if err != nil {
		return requestlog.Record{}, err
	}

	rec.CapturedAt = parseTime(capturedAt)
	rec.Origin, _ = requestlog.ParseOrigin(origin)
	if method != nil || status != nil {
		rec.Transport = &requestlog.Transport{
			Method:       deref(method),
			Accept:       deref(accept),
			ContentType:  deref(contentType),
			Connection:   deref(connection),
			CacheControl: deref(cacheCtrl),
		}
		if status != nil {
			rec.Transport.StatusCode = int(*status)
		}
	}
	return rec, nil
}

func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		return parseTimeText(t)
	case []byte:
		return parseTimeText(string(t))
	default:
		return time.Time{}
	}
}

func parseTimeText(s string) time.Time {
	for _, layout := range []string{sqliteTimeLayout, requestlog.TimeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
