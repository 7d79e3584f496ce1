package logstore

import (
	"time"

	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

// document is the stored form of a record for the document stores. The *_text
// fields hold the textual form of non-string columns so search can match them
// like any other field.
type document struct {
	ID             int64     `bson:"_id" json:"id"`
	CapturedAt     time.Time `bson:"captured_at" json:"captured_at"`
	CapturedText   string    `bson:"captured_at_text" json:"captured_at_text"`
	Origin         string    `bson:"origin" json:"origin"`
	TargetPath     string    `bson:"target_path" json:"target_path"`
	Method         *string   `bson:"method" json:"method"`
	Referrer       string    `bson:"referrer" json:"referrer"`
	ActorRole      string    `bson:"actor_role" json:"actor_role"`
	ClientIP       string    `bson:"client_ip" json:"client_ip"`
	Host           string    `bson:"host" json:"host"`
	Device         string    `bson:"device" json:"device"`
	Platform       string    `bson:"platform" json:"platform"`
	Browser        string    `bson:"browser" json:"browser"`
	BrowserVersion string    `bson:"browser_version" json:"browser_version"`
	UserAgent      string    `bson:"user_agent" json:"user_agent"`
	OriginHeader   string    `bson:"origin_header" json:"origin_header"`
	Accept         *string   `bson:"accept" json:"accept"`
	AcceptEncoding string    `bson:"accept_encoding" json:"accept_encoding"`
	AcceptLanguage string    `bson:"accept_language" json:"accept_language"`
	ContentType    *string   `bson:"content_type" json:"content_type"`
	Connection     *string   `bson:"connection" json:"connection"`
	CacheControl   *string   `bson:"cache_control" json:"cache_control"`
	StatusCode     *int      `bson:"status_code" json:"status_code"`
	StatusText     string    `bson:"status_code_text" json:"status_code_text"`
	Country        string    `bson:"country" json:"country"`
}

func toDocument(rec *requestlog.Record) document {
	d := document{
		ID:             rec.ID,
		CapturedAt:     rec.CapturedAt.UTC(),
		CapturedText:   rec.Text(requestlog.ColumnCapturedAt),
		Origin:         rec.Origin.String(),
		TargetPath:     rec.TargetPath,
		Referrer:       rec.Referrer,
		ActorRole:      rec.ActorRole,
		ClientIP:       rec.ClientIP,
		Host:           rec.Host,
		Device:         rec.Device,
		Platform:       rec.Platform,
		Browser:        rec.Browser,
		BrowserVersion: rec.BrowserVersion,
		UserAgent:      rec.UserAgent,
		OriginHeader:   rec.OriginHeader,
		AcceptEncoding: rec.AcceptEncoding,
		AcceptLanguage: rec.AcceptLanguage,
		StatusText:     rec.Text(requestlog.ColumnStatusCode),
		Country:        rec.Country,
	}
	if t := rec.Transport; t != nil {
		status := t.StatusCode
		d.Method, d.Accept, d.ContentType = &t.Method, &t.Accept, &t.ContentType
		d.Connection, d.CacheControl, d.StatusCode = &t.Connection, &t.CacheControl, &status
	}
	return d
}

func (d document) record() requestlog.Record {
	origin, _ := requestlog.ParseOrigin(d.Origin)
	rec := requestlog.Record{
		ID:             d.ID,
		CapturedAt:     d.CapturedAt.UTC(),
		Origin:         origin,
		TargetPath:     d.TargetPath,
		Referrer:       d.Referrer,
		ActorRole:      d.ActorRole,
		ClientIP:       d.ClientIP,
		Host:           d.Host,
		Device:         d.Device,
		Platform:       d.Platform,
		Browser:        d.Browser,
		BrowserVersion: d.BrowserVersion,
		UserAgent:      d.UserAgent,
		OriginHeader:   d.OriginHeader,
		AcceptEncoding: d.AcceptEncoding,
		AcceptLanguage: d.AcceptLanguage,
		Country:        d.Country,
	}
	if d.Method != nil || d.StatusCode != nil {
		rec.Transport = &requestlog.Transport{
			Method:       deref(d.Method),
			Accept:       deref(d.Accept),
			ContentType:  deref(d.ContentType),
			Connection:   deref(d.Connection),
			CacheControl: deref(d.CacheControl),
		}
		if d.StatusCode != nil {
			rec.Transport.StatusCode = *d.StatusCode
		}
	}
	return rec
}
