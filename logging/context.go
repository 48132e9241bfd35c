package logging

import (
	"context"
	"net/http"
)

// RequestIDHeader carries the run id of a test request to the application under test.
const RequestIDHeader = "X-REQUEST-ID"

type runIDKey struct{}

// WithRunID returns a copy of ctx that carries the given run id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run id stored by WithRunID, if any.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	runID, ok := ctx.Value(runIDKey{}).(string)
	return runID, ok && runID != ""
}

// RequestIDMiddleware copies the RequestIDHeader of incoming requests into the request context,
// so that loggers obtained from CaptureSupport.Logger with that context can attribute their
// output to the test that sent the request.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if runID := r.Header.Get(RequestIDHeader); runID != "" {
			r = r.WithContext(WithRunID(r.Context(), runID))
		}
		next.ServeHTTP(w, r)
	})
}
