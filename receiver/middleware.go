package receiver

import (
	"log"
	"net/http"
	"time"

	"github.com/indieinfra/dropper/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and MaxBytesReader reach the
// server's writer.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// RequestLogger puts an upload-scoped logger in the request context and
// logs method, path, status and duration once the handler returns.
func RequestLogger(l logging.Logger, next http.Handler) http.Handler {
	if l == nil {
		l = log.Default()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ul := logging.WithUpload(l, r.Method, r.URL.Path, r.Header.Get("X-Request-ID"), 0)
		r = r.WithContext(logging.ContextWithLogger(r.Context(), ul))

		rec := &statusRecorder{
			ResponseWriter: w,
			status:         http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		ul.Infof("%d %s", rec.status, time.Since(start))
	})
}
