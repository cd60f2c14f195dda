package logging

import (
	"context"
	"fmt"
	"log"
	"strings"
)

type loggerKeyType struct{}

var loggerKey = loggerKeyType{}

// Logger is a minimal interface allowing substitution (e.g., zap, logrus).
type Logger interface {
	Printf(format string, v ...any)
}

// Discard drops every message.
var Discard Logger = discard{}

type discard struct{}

func (discard) Printf(string, ...any) {}

// UploadLogger holds upload-scoped context to enrich logs.
type UploadLogger struct {
	logger    Logger
	method    string
	endpoint  string
	requestID string
	files     int
}

// WithUpload creates an upload-scoped logger wrapping the provided logger.
// A nil logger falls back to log.Default().
func WithUpload(l Logger, method, endpoint, requestID string, files int) *UploadLogger {
	if l == nil {
		l = log.Default()
	}

	return &UploadLogger{
		logger:    l,
		method:    method,
		endpoint:  endpoint,
		requestID: requestID,
		files:     files,
	}
}

// ContextWithLogger stores the upload logger in context for downstream callers.
func ContextWithLogger(ctx context.Context, ul *UploadLogger) context.Context {
	return context.WithValue(ctx, loggerKey, ul)
}

// FromContext retrieves an upload logger from context when available.
func FromContext(ctx context.Context) *UploadLogger {
	if ctx == nil {
		return nil
	}

	if ul, ok := ctx.Value(loggerKey).(*UploadLogger); ok {
		return ul
	}

	return nil
}

func (ul *UploadLogger) RequestID() string {
	if ul == nil {
		return ""
	}
	return ul.requestID
}

func (ul *UploadLogger) logf(level string, message string) {
	var b strings.Builder
	b.WriteString(level)

	if ul.method != "" {
		fmt.Fprintf(&b, " method=%s", ul.method)
	}
	if ul.endpoint != "" {
		fmt.Fprintf(&b, " endpoint=%s", ul.endpoint)
	}
	if ul.requestID != "" {
		fmt.Fprintf(&b, " request_id=%s", ul.requestID)
	}
	if ul.files > 0 {
		fmt.Fprintf(&b, " files=%d", ul.files)
	}

	ul.logger.Printf("%s: %s", b.String(), message)
}

func (ul *UploadLogger) Infof(format string, v ...any)  { ul.logf("INFO", fmt.Sprintf(format, v...)) }
func (ul *UploadLogger) Errorf(format string, v ...any) { ul.logf("ERROR", fmt.Sprintf(format, v...)) }

// Debugf is only emitted when debug logging was switched on with SetDebug.
func (ul *UploadLogger) Debugf(format string, v ...any) {
	if debug.Load() {
		ul.logf("DEBUG", fmt.Sprintf(format, v...))
	}
}
