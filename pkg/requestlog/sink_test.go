package requestlog_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

func TestQueryNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   requestlog.Query
		want requestlog.Query
	}{
		{
			name: "defaults",
			in:   requestlog.Query{},
			want: requestlog.Query{OrderBy: "captured_at", Desc: true, Page: 1, PerPage: 10},
		},
		{
			name: "unknown column falls back",
			in:   requestlog.Query{OrderBy: "password; drop table", Desc: false, Page: 3, PerPage: 20},
			want: requestlog.Query{OrderBy: "captured_at", Desc: true, Page: 3, PerPage: 20},
		},
		{
			name: "sortable column kept",
			in:   requestlog.Query{OrderBy: "client_ip", Page: -1, PerPage: 1000, Search: "  chrome "},
			want: requestlog.Query{OrderBy: "client_ip", Page: 1, PerPage: 100, Search: "chrome"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}

	assert.Equal(t, 40, requestlog.Query{Page: 3, PerPage: 20}.Offset())
	assert.Zero(t, requestlog.Query{}.Offset())
}

func TestQueryMatches(t *testing.T) {
	t.Parallel()

	rec := requestlog.Record{
		ID:         3,
		CapturedAt: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
		Origin:     requestlog.OriginDirect,
		TargetPath: "/Checkout",
		ClientIP:   "203.0.113.7",
		UserAgent:  chromeUA,
		Transport:  &requestlog.Transport{Method: http.MethodPost, StatusCode: 502},
	}

	assert.True(t, requestlog.Query{}.Matches(rec))
	assert.True(t, requestlog.Query{Search: "checkout"}.Matches(rec))
	assert.True(t, requestlog.Query{Search: "2026-05-06"}.Matches(rec))
	assert.True(t, requestlog.Query{Search: "502"}.Matches(rec))
	assert.True(t, requestlog.Query{Search: "post"}.Matches(rec))
	assert.True(t, requestlog.Query{Search: "113.7"}.Matches(rec))
	assert.False(t, requestlog.Query{Search: "firefox"}.Matches(rec))
	assert.True(t, requestlog.Query{IDs: []int64{1, 3}}.Matches(rec))
	assert.False(t, requestlog.Query{IDs: []int64{1, 2}}.Matches(rec))
}
