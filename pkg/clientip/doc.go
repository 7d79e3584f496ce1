// Package clientip resolves the best-effort public address of the client that
// sent an *http.Request.
//
// Resolution starts from the TCP peer address (RemoteAddr) and then walks the
// X-Forwarded-For chain from the rightmost entry, the one appended by the
// proxy closest to this server, back towards the origin. The first entry that
// is a valid public address wins. Private, loopback, link-local, unspecified
// and other reserved ranges are skipped, so relay hops added by trusted
// infrastructure never shadow the real client. When no entry qualifies the
// peer address is kept.
//
//	X-Forwarded-For: 203.0.113.7, 10.0.0.5     RemoteAddr: 10.0.0.5:443
//	                 ▲            ▲ private, skipped
//	                 └─ selected
//
// Helpers:
//
//   - GetIP resolves the address for a request.
//   - Select is the pure form working on raw header values.
//   - IsPublic reports whether an address passes the public-range filter.
//   - SetIPToContext and GetIPFromContext carry the result in a context.
//   - Middleware resolves once per request and stores the result in the context.
//
// # Usage
//
//	import "github.com/dmitrymomot/trafficmon/pkg/clientip"
//
//	r := chi.NewRouter()
//	r.Use(clientip.Middleware)
//
//	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
//		ip := clientip.GetIPFromContext(r.Context())
//		...
//	})
package clientip
