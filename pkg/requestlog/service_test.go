package requestlog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trafficmon/pkg/dedup"
	"github.com/dmitrymomot/trafficmon/pkg/nonce"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

func pageRequest(target string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.Header.Set("Accept", "text/html")
	r.Header.Set("User-Agent", chromeUA)
	return r
}

func TestHandleInboundDirectDuplicate(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	svc := newService(t, sink)
	ctx := context.Background()

	in := requestlog.Inbound{Origin: requestlog.OriginDirect, Request: pageRequest("/"), Status: http.StatusOK, Nonce: "n1"}

	first := svc.HandleInbound(ctx, in)
	second := svc.HandleInbound(ctx, in)

	assert.Equal(t, requestlog.StatusLogged, first.Status)
	assert.Equal(t, requestlog.StatusDuplicate, second.Status)
	assert.Equal(t, requestlog.MessageDuplicate, second.Message)
	assert.Len(t, sink.all(), 1)
}

func TestHandleInboundConcurrentDuplicates(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	svc := newService(t, sink)

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.HandleInbound(context.Background(), requestlog.Inbound{
				Origin:  requestlog.OriginDirect,
				Request: pageRequest("/race"),
				Status:  http.StatusOK,
				Nonce:   "same",
			})
		}()
	}
	wg.Wait()

	assert.Len(t, sink.all(), 1)
}

func TestHandleInboundFilters(t *testing.T) {
	t.Parallel()

	nonHTML := httptest.NewRequest(http.MethodGet, "/feed", nil)
	nonHTML.Header.Set("Accept", "application/json")

	tests := []struct {
		name    string
		in      requestlog.Inbound
		want    requestlog.Status
		message string
	}{
		{
			name:    "ignore origin",
			in:      requestlog.Inbound{Origin: requestlog.OriginIgnore, Request: pageRequest("/")},
			want:    requestlog.StatusIgnored,
			message: requestlog.MessageNotLogged,
		},
		{
			name:    "non html",
			in:      requestlog.Inbound{Origin: requestlog.OriginDirect, Request: nonHTML, Nonce: "n"},
			want:    requestlog.StatusIgnored,
			message: requestlog.MessageNotHTML,
		},
		{
			name:    "static asset",
			in:      requestlog.Inbound{Origin: requestlog.OriginDirect, Request: pageRequest("/css/site.CSS?v=3"), Nonce: "n"},
			want:    requestlog.StatusIgnored,
			message: requestlog.MessageStatic,
		},
		{
			name:    "api marker",
			in:      requestlog.Inbound{Origin: requestlog.OriginDirect, Request: pageRequest("/wp-json/wp/v2/posts"), Nonce: "n"},
			want:    requestlog.StatusIgnored,
			message: requestlog.MessageStatic,
		},
		{
			name:    "api prefix",
			in:      requestlog.Inbound{Origin: requestlog.OriginDirect, Request: pageRequest("/api/items?page=2"), Nonce: "n"},
			want:    requestlog.StatusIgnored,
			message: requestlog.MessageStatic,
		},
		{
			name: "beacon api target",
			in: requestlog.Inbound{Origin: requestlog.OriginBeacon, Request: httptest.NewRequest(http.MethodPost, "/beacon", nil),
				Fields: requestlog.BeaconFields{Nonce: "n", RequestURL: "https://shop.example/API/items"}},
			want:    requestlog.StatusIgnored,
			message: requestlog.MessageStatic,
		},
		{
			name: "beacon static target",
			in: requestlog.Inbound{Origin: requestlog.OriginBeacon, Request: httptest.NewRequest(http.MethodPost, "/beacon", nil),
				Fields: requestlog.BeaconFields{RequestURL: "https://shop.example/logo.png"}},
			want:    requestlog.StatusIgnored,
			message: requestlog.MessageStatic,
		},
		{
			name: "beacon without token",
			in: requestlog.Inbound{Origin: requestlog.OriginBeacon, Request: httptest.NewRequest(http.MethodPost, "/beacon", nil),
				Fields: requestlog.BeaconFields{IPAddress: "203.0.113.7", RequestURL: "https://shop.example/"}},
			want:    requestlog.StatusRejected,
			message: requestlog.MessageNoToken,
		},
		{
			name: "beacon with malformed token",
			in: requestlog.Inbound{Origin: requestlog.OriginBeacon, Request: httptest.NewRequest(http.MethodPost, "/beacon", nil),
				Fields: requestlog.BeaconFields{Nonce: "<script>", RequestURL: "https://shop.example/"}},
			want:    requestlog.StatusRejected,
			message: requestlog.MessageBadToken,
		},
		{
			name: "beacon from localhost",
			in: requestlog.Inbound{Origin: requestlog.OriginBeacon, Request: httptest.NewRequest(http.MethodPost, "/beacon", nil),
				Fields: requestlog.BeaconFields{Nonce: "abc", RequestURL: "http://localhost:8080/"}},
			want:    requestlog.StatusIgnored,
			message: requestlog.MessageLocalhost,
		},
		{
			name: "beacon from loopback address",
			in: requestlog.Inbound{Origin: requestlog.OriginBeacon, Request: httptest.NewRequest(http.MethodPost, "/beacon", nil),
				Fields: requestlog.BeaconFields{Nonce: "abc", RequestURL: "http://127.0.0.1/"}},
			want:    requestlog.StatusIgnored,
			message: requestlog.MessageLocalhost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sink := &recordingSink{}
			obs := &countingObserver{}
			svc := newService(t, sink, requestlog.WithObserver(obs))

			ack := svc.HandleInbound(context.Background(), tt.in)
			assert.Equal(t, tt.want, ack.Status)
			assert.Equal(t, tt.message, ack.Message)
			assert.Empty(t, sink.all())
			assert.Equal(t, 1, obs.outcomes[tt.in.Origin.String()+"/"+string(tt.want)])
		})
	}
}

func TestHandleInboundSinkFailure(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{err: errors.New("disk full")}
	obs := &countingObserver{}
	svc := newService(t, sink, requestlog.WithObserver(obs))

	ack := svc.HandleInbound(context.Background(), requestlog.Inbound{
		Origin: requestlog.OriginDirect, Request: pageRequest("/"), Status: http.StatusOK, Nonce: "n",
	})

	assert.Equal(t, requestlog.StatusLogged, ack.Status)
	assert.Equal(t, 1, obs.sinkErrors)
}

func TestHandleInboundDedupStoreDown(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	obs := &countingObserver{}
	svc := requestlog.NewService(requestlog.DefaultConfig(), sink, dedup.New(brokenStore{}), requestlog.WithObserver(obs))

	in := requestlog.Inbound{Origin: requestlog.OriginDirect, Request: pageRequest("/"), Status: http.StatusOK, Nonce: "n"}
	assert.Equal(t, requestlog.StatusLogged, svc.HandleInbound(context.Background(), in).Status)
	assert.Equal(t, requestlog.StatusLogged, svc.HandleInbound(context.Background(), in).Status)

	assert.Len(t, sink.all(), 2)
	assert.Equal(t, 2, obs.dedupErrs)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	svc := newService(t, sink)

	h := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("<html></html>"))
	}))

	serve := func(r *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	first := serve(pageRequest("/"))
	second := serve(pageRequest("/"))
	serve(pageRequest("/missing"))
	serve(pageRequest("/admin/settings"))
	serve(pageRequest("/app.js"))

	assert.NotEmpty(t, first.Header().Get(nonce.Header))
	assert.NotEqual(t, first.Header().Get(nonce.Header), second.Header().Get(nonce.Header))

	records := sink.all()
	require.Len(t, records, 3)
	assert.Equal(t, http.StatusOK, records[0].StatusCode())
	assert.Equal(t, http.StatusNotFound, records[2].StatusCode())
	assert.Equal(t, "/missing", records[2].TargetPath)
}

func TestMiddlewareReusesContextNonce(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	svc := newService(t, sink)
	h := nonce.Middleware(svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, pageRequest("/"))

	assert.Len(t, rec.Header().Values(nonce.Header), 1)
	assert.Len(t, sink.all(), 1)
}

func TestMiddlewareForwardsMintedNonce(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	svc := newService(t, sink)

	var forwarded string
	h := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forwarded = r.Header.Get(nonce.Header)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, pageRequest("/"))

	require.NotEmpty(t, forwarded)
	assert.Equal(t, rec.Header().Get(nonce.Header), forwarded)
}

func TestScriptHandler(t *testing.T) {
	t.Parallel()

	cfg := requestlog.DefaultConfig()
	cfg.BeaconPath = "/t/beacon"
	svc := requestlog.NewService(cfg, &recordingSink{}, newGuard(t))

	rec := httptest.NewRecorder()
	svc.ScriptHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trafficmon.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/javascript; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `fetch("/t/beacon"`)
	assert.Contains(t, body, "dataset.nonce")
	assert.NotContains(t, body, "__PATH__")
}

func TestBeaconHandler(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	svc := newService(t, sink)
	h := svc.BeaconHandler()

	post := func(t *testing.T, form url.Values) (int, requestlog.Ack) {
		t.Helper()
		r := httptest.NewRequest(http.MethodPost, "/beacon", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		var body struct {
			Data requestlog.Ack `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec.Code, body.Data
	}

	fields := url.Values{
		"nonce":       {"f00d"},
		"ip_address":  {"203.0.113.7"},
		"request_url": {"https://shop.example/products/42?utm=x"},
	}

	code, ack := post(t, fields)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, requestlog.StatusLogged, ack.Status)

	code, ack = post(t, fields)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, requestlog.StatusDuplicate, ack.Status)

	code, ack = post(t, url.Values{"request_url": {"https://shop.example/"}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, requestlog.Ack{Status: requestlog.StatusRejected, Message: "missing token"}, ack)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, "/products/42", records[0].TargetPath)
	assert.Equal(t, "203.0.113.7", records[0].ClientIP)
	assert.True(t, records[0].Cached())
}

func TestBeaconHandlerJSON(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	svc := newService(t, sink)

	r := httptest.NewRequest(http.MethodPost, "/beacon",
		strings.NewReader(`{"nonce":"abc","ip_address":"198.51.100.9","request_url":"/pricing"}`))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	svc.BeaconHandler().ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sink.all(), 1)
	assert.Equal(t, "/pricing", sink.all()[0].TargetPath)
}
