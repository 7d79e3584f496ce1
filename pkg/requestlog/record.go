package requestlog

import (
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"
)

// MaxFieldLength bounds TargetPath and Referrer, counted in runes.
const MaxFieldLength = 255

// TimeLayout is the textual form of CapturedAt used for search and export.
const TimeLayout = "2006-01-02 15:04:05"

// Transport holds the facts only available when the request reached the server.
type Transport struct {
	Method       string `json:"method"`
	Accept       string `json:"accept"`
	ContentType  string `json:"content_type"`
	Connection   string `json:"connection"`
	CacheControl string `json:"cache_control"`
	StatusCode   int    `json:"status_code"`
}

// Record is one logged request. Records are built by an Extractor and not
// modified afterwards; ID is assigned by the sink on insert.
type Record struct {
	ID             int64      `json:"id"`
	CapturedAt     time.Time  `json:"captured_at"`
	Origin         Origin     `json:"origin"`
	TargetPath     string     `json:"target_path"`
	Referrer       string     `json:"referrer"`
	ActorRole      string     `json:"actor_role"`
	ClientIP       string     `json:"client_ip"`
	Host           string     `json:"host"`
	Device         string     `json:"device"`
	Platform       string     `json:"platform"`
	Browser        string     `json:"browser"`
	BrowserVersion string     `json:"browser_version"`
	UserAgent      string     `json:"user_agent"`
	OriginHeader   string     `json:"origin_header"`
	AcceptEncoding string     `json:"accept_encoding"`
	AcceptLanguage string     `json:"accept_language"`
	Country        string     `json:"country,omitempty"`
	Transport      *Transport `json:"transport,omitempty"`
}

// Cached reports whether the page was served without reaching the server.
func (r Record) Cached() bool { return r.Origin == OriginBeacon }

// Method returns the HTTP method, empty for beacon records.
func (r Record) Method() string {
	if r.Transport == nil {
		return ""
	}
	return r.Transport.Method
}

// StatusCode returns the response status, zero for beacon records.
func (r Record) StatusCode() int {
	if r.Transport == nil {
		return 0
	}
	return r.Transport.StatusCode
}

// Column names shared by the SQL schema, CSV export and sorting.
const (
	ColumnID             = "id"
	ColumnCapturedAt     = "captured_at"
	ColumnOrigin         = "origin"
	ColumnTargetPath     = "target_path"
	ColumnMethod         = "method"
	ColumnReferrer       = "referrer"
	ColumnActorRole      = "actor_role"
	ColumnClientIP       = "client_ip"
	ColumnHost           = "host"
	ColumnDevice         = "device"
	ColumnPlatform       = "platform"
	ColumnBrowser        = "browser"
	ColumnBrowserVersion = "browser_version"
	ColumnUserAgent      = "user_agent"
	ColumnOriginHeader   = "origin_header"
	ColumnAccept         = "accept"
	ColumnAcceptEncoding = "accept_encoding"
	ColumnAcceptLanguage = "accept_language"
	ColumnContentType    = "content_type"
	ColumnConnection     = "connection"
	ColumnCacheControl   = "cache_control"
	ColumnStatusCode     = "status_code"
	ColumnCountry        = "country"
)

// Columns lists every column in export order.
var Columns = []string{
	ColumnID, ColumnCapturedAt, ColumnOrigin, ColumnTargetPath, ColumnMethod,
	ColumnReferrer, ColumnActorRole, ColumnClientIP, ColumnHost, ColumnDevice,
	ColumnPlatform, ColumnBrowser, ColumnBrowserVersion, ColumnUserAgent,
	ColumnOriginHeader, ColumnAccept, ColumnAcceptEncoding, ColumnAcceptLanguage,
	ColumnContentType, ColumnConnection, ColumnCacheControl, ColumnStatusCode,
	ColumnCountry,
}

// Value returns the value stored under column, or nil for unknown columns.
// Transport columns are nil on beacon records.
func (r Record) Value(column string) any {
	switch column {
	case ColumnID:
		return r.ID
	case ColumnCapturedAt:
		return r.CapturedAt
	case ColumnOrigin:
		return r.Origin.String()
	case ColumnTargetPath:
		return r.TargetPath
	case ColumnReferrer:
		return r.Referrer
	case ColumnActorRole:
		return r.ActorRole
	case ColumnClientIP:
		return r.ClientIP
	case ColumnHost:
		return r.Host
	case ColumnDevice:
		return r.Device
	case ColumnPlatform:
		return r.Platform
	case ColumnBrowser:
		return r.Browser
	case ColumnBrowserVersion:
		return r.BrowserVersion
	case ColumnUserAgent:
		return r.UserAgent
	case ColumnOriginHeader:
		return r.OriginHeader
	case ColumnAcceptEncoding:
		return r.AcceptEncoding
	case ColumnAcceptLanguage:
		return r.AcceptLanguage
	case ColumnCountry:
		return r.Country
	}

	if r.Transport == nil {
		return nil
	}
	switch column {
	case ColumnMethod:
		return r.Transport.Method
	case ColumnAccept:
		return r.Transport.Accept
	case ColumnContentType:
		return r.Transport.ContentType
	case ColumnConnection:
		return r.Transport.Connection
	case ColumnCacheControl:
		return r.Transport.CacheControl
	case ColumnStatusCode:
		return r.Transport.StatusCode
	}
	return nil
}

// Text returns the value under column as text. Times use TimeLayout in UTC
// and missing transport values are empty.
func (r Record) Text(column string) string {
	switch v := r.Value(column).(type) {
	case nil:
		return ""
	case time.Time:
		return v.UTC().Format(TimeLayout)
	default:
		return cast.ToString(v)
	}
}

// truncate cuts s to at most n runes without splitting a multi-byte sequence.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i]
}
