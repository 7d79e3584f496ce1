package requestlog

import (
	"net/http"

	"github.com/dmitrymomot/trafficmon/pkg/nonce"
)

// Middleware logs DIRECT page requests served by next. The page nonce is
// taken from the context when nonce.Middleware ran earlier, otherwise minted
// here and attached with nonce.Attach. The pipeline runs after
// next returns and the response has been flushed.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Classify(r) != OriginDirect {
			next.ServeHTTP(w, r)
			return
		}

		token := nonce.FromContext(r.Context())
		if token == "" {
			token = nonce.New()
			r = nonce.Attach(w, r, token)
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		s.HandleInbound(r.Context(), Inbound{
			Origin:  OriginDirect,
			Request: r,
			Status:  sw.status,
			Nonce:   token,
		})
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
