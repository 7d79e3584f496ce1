// Package nonce mints the per-response page token that scopes request
// deduplication to a single page load.
//
// Middleware attaches a fresh nonce to every response: in the request
// context, in the X-Traffic-Nonce response header and in the X-Traffic-Nonce
// request header that a reverse proxy forwards upstream. Pages rendered by the
// host application embed it (read it with FromContext in process, or from the
// request header upstream) so the client-side beacon can report the same
// token back. A DIRECT record and the BEACON that
// confirms the same page load then share one dedup key.
package nonce
