package requestlog

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/dmitrymomot/trafficmon/pkg/clientip"
	"github.com/dmitrymomot/trafficmon/pkg/useragent"
)

// RoleProvider returns the role of the actor behind r.
type RoleProvider func(r *http.Request) string

// CountryLookup resolves an IP address to an ISO country code, or "".
type CountryLookup interface {
	Country(ip string) string
}

// BeaconFields are the values a cached page posts back.
type BeaconFields struct {
	Nonce      string `form:"nonce" json:"nonce"`
	IPAddress  string `form:"ip_address" json:"ip_address"`
	RequestURL string `form:"request_url" json:"request_url"`
}

// Extractor builds records from requests. Extraction never fails: malformed
// input leaves the affected field empty.
type Extractor struct {
	role        RoleProvider
	country     CountryLookup
	defaultRole string
	now         func() time.Time
}

type ExtractorOption func(*Extractor)

// WithRoleProvider sets the role source. Empty roles fall back to the default role.
func WithRoleProvider(p RoleProvider) ExtractorOption {
	return func(e *Extractor) { e.role = p }
}

// WithDefaultRole sets the role recorded when no provider is configured or it
// returns "".
func WithDefaultRole(role string) ExtractorOption {
	return func(e *Extractor) {
		if role != "" {
			e.defaultRole = role
		}
	}
}

// WithCountryLookup enables the country column.
func WithCountryLookup(l CountryLookup) ExtractorOption {
	return func(e *Extractor) { e.country = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		defaultRole: "visitor",
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Direct builds a record for a page request this process served with status.
func (e *Extractor) Direct(r *http.Request, status int) Record {
	rec := e.common(r, OriginDirect, clientip.FromRequest(r))
	rec.TargetPath = truncate(r.RequestURI, MaxFieldLength)
	rec.Transport = &Transport{
		Method:       r.Method,
		Accept:       r.Header.Get("Accept"),
		ContentType:  r.Header.Get("Content-Type"),
		Connection:   r.Header.Get("Connection"),
		CacheControl: r.Header.Get("Cache-Control"),
		StatusCode:   status,
	}
	return rec
}

// Beacon builds a record from a beacon call. The client IP and target come
// from the posted fields; a posted address that does not parse falls back to
// the address of the beacon call itself.
func (e *Extractor) Beacon(r *http.Request, f BeaconFields) Record {
	ip := clientip.FromRequest(r)
	if addr, err := netip.ParseAddr(strings.TrimSpace(f.IPAddress)); err == nil {
		ip = addr.Unmap().String()
	}

	rec := e.common(r, OriginBeacon, ip)
	rec.TargetPath = truncate(pathOf(f.RequestURL), MaxFieldLength)
	return rec
}

func (e *Extractor) common(r *http.Request, origin Origin, ip string) Record {
	ua := useragent.Parse(r.UserAgent())

	rec := Record{
		CapturedAt:     e.now().UTC(),
		Origin:         origin,
		Referrer:       truncate(r.Referer(), MaxFieldLength),
		ActorRole:      e.actorRole(r),
		ClientIP:       ip,
		Host:           validHost(r.Host),
		Device:         ua.Device(),
		Platform:       ua.Platform(),
		Browser:        ua.Browser(),
		BrowserVersion: ua.BrowserVersion(),
		UserAgent:      ua.String(),
		OriginHeader:   r.Header.Get("Origin"),
		AcceptEncoding: r.Header.Get("Accept-Encoding"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
	}
	if e.country != nil && ip != "" {
		rec.Country = e.country.Country(ip)
	}
	return rec
}

func (e *Extractor) actorRole(r *http.Request) string {
	if e.role != nil {
		if role := e.role(r); role != "" {
			return role
		}
	}
	return e.defaultRole
}

// validHost strips an optional port and returns host if it is a syntactically
// valid hostname, or "" otherwise.
func validHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" || len(host) > 253 {
		return ""
	}
	for label := range strings.SplitSeq(host, ".") {
		if !validLabel(label) {
			return ""
		}
	}
	return host
}

func validLabel(label string) bool {
	if label == "" || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}
