package requestlog

import (
	"net/http"
	"strconv"
	"strings"
)

// scriptSource reports a page load back to the beacon endpoint. It reads the
// token from the data-nonce attribute of its own script tag, which pages fill
// from the nonce.Header request header, and does nothing without one.
const scriptSource = `(function () {
  var s = document.currentScript;
  var n = s && s.dataset.nonce;
  if (!n) return;
  var body = new URLSearchParams({ nonce: n, request_url: location.href });
  if (navigator.sendBeacon && navigator.sendBeacon(__PATH__, body)) return;
  fetch(__PATH__, { method: "POST", body: body, keepalive: true, credentials: "same-origin" });
})();
`

// ScriptHandler serves the beacon script for cached pages:
//
//	<script src="/trafficmon.js" data-nonce="{{ .Nonce }}" async></script>
//
// The body is rendered once with the configured beacon path.
func (s *Service) ScriptHandler() http.HandlerFunc {
	body := []byte(strings.ReplaceAll(scriptSource, "__PATH__", strconv.Quote(s.cfg.BeaconPath)))
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(body)
	}
}
