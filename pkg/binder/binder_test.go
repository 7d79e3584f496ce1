package binder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trafficmon/pkg/binder"
)

type listRequest struct {
	Search  string  `query:"search"`
	Page    int     `query:"page"`
	PerPage *int    `query:"per_page"`
	IDs     []int64 `query:"ids"`
	Desc    bool    `query:"desc"`
	Skipped string  `query:"-"`
	NoTag   string
}

func TestQuery(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?search=chrome&page=2&per_page=50&ids=1,2&ids=3&desc=on&Skipped=x&NoTag=y", nil)
	var req listRequest
	require.NoError(t, binder.Query()(r, &req))

	assert.Equal(t, "chrome", req.Search)
	assert.Equal(t, 2, req.Page)
	require.NotNil(t, req.PerPage)
	assert.Equal(t, 50, *req.PerPage)
	assert.Equal(t, []int64{1, 2, 3}, req.IDs)
	assert.True(t, req.Desc)
	assert.Empty(t, req.Skipped)
	assert.Empty(t, req.NoTag)
}

func TestQueryInvalid(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?page=abc", nil)
	var req listRequest
	assert.ErrorIs(t, binder.Query()(r, &req), binder.ErrFailedToParseQuery)
	assert.ErrorIs(t, binder.Query()(r, req), binder.ErrFailedToParseQuery, "non-pointer target")
}

type beacon struct {
	Nonce string `form:"nonce" json:"nonce"`
	IP    string `form:"ip_address" json:"ip_address"`
	URL   string `form:"request_url" json:"request_url"`
}

func TestBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		want        beacon
		wantErr     error
	}{
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"nonce": {"n1"}, "ip_address": {"1.2.3.4"}, "request_url": {"https://a.test/x"}}.Encode(),
			want:        beacon{Nonce: "n1", IP: "1.2.3.4", URL: "https://a.test/x"},
		},
		{
			name:        "json with charset",
			contentType: "application/json; charset=utf-8",
			body:        `{"nonce":"n2","ip_address":"5.6.7.8","request_url":"/p"}`,
			want:        beacon{Nonce: "n2", IP: "5.6.7.8", URL: "/p"},
		},
		{
			name:        "json unknown field",
			contentType: "application/json",
			body:        `{"nonce":"n2","extra":1}`,
			wantErr:     binder.ErrFailedToParseJSON,
		},
		{
			name:        "json empty",
			contentType: "application/json",
			body:        ``,
			wantErr:     binder.ErrFailedToParseJSON,
		},
		{
			name:        "unsupported",
			contentType: "text/plain",
			body:        "nonce=n1",
			wantErr:     binder.ErrUnsupportedMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodPost, "/beacon", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", tt.contentType)

			var got beacon
			err := binder.Body()(r, &got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormNotApplicable(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	r.Header.Set("Content-Type", "application/json")
	var got beacon
	assert.ErrorIs(t, binder.Form()(r, &got), binder.ErrBinderNotApplicable)
}

func TestPath(t *testing.T) {
	t.Parallel()

	type getRequest struct {
		ID int64 `path:"id"`
	}

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "42")
	r := httptest.NewRequest(http.MethodGet, "/logs/42", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	var req getRequest
	require.NoError(t, binder.Path()(r, &req))
	assert.Equal(t, int64(42), req.ID)

	rctx.URLParams = chi.RouteParams{}
	rctx.URLParams.Add("id", "x")
	assert.ErrorIs(t, binder.Path()(r, &req), binder.ErrFailedToParsePath)

	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.ErrorIs(t, binder.Path()(plain, &req), binder.ErrBinderNotApplicable)
}
