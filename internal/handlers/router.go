package handlers

import (
	"net/http"
	"time"

	"github.com/belphemur/haushaltsheld/internal/logging"
)

// RouterDeps are the collaborators the HTTP API is built on
type RouterDeps struct {
	Service  HouseholdService
	Sessions SessionProvider
	DB       Pinger
	Location *time.Location
}

// NewRouter registers every route on a fresh mux and wraps it with request logging
func NewRouter(deps RouterDeps) http.Handler {
	base := NewBaseHandler()
	mux := http.NewServeMux()

	NewHealthHandler(base, deps.DB).RegisterRoutes(mux)
	NewHouseholdHandler(base, deps.Service).RegisterRoutes(mux)
	NewTaskHandler(base, deps.Service, deps.Location).RegisterRoutes(mux)
	NewCalendarHandler(base, deps.Service, deps.Sessions, deps.Location).RegisterRoutes(mux)

	return logRequests(mux)
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	logger := logging.GetLogger("http-access")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		event := logger.Debug()
		if rec.status >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
