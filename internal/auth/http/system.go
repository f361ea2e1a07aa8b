package http

import (
	"net/http"
	"time"

	"github.com/campusconnect/campusconnect/internal/auth/cache"
	"github.com/campusconnect/campusconnect/internal/auth/store"
	"github.com/campusconnect/campusconnect/pkg/httpx"
)

type healthData struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// LivezHandler answers liveness probes: 200 whenever the process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.Send(w, http.StatusOK, "ok", healthData{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler answers readiness probes: 200 only when both the database
// and the cache respond.
func ReadyzHandler(st store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			httpx.Fail(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		if err := c.Ping(r.Context()); err != nil {
			httpx.Fail(w, http.StatusServiceUnavailable, "cache unavailable")
			return
		}
		httpx.Send(w, http.StatusOK, "ready", nil)
	}
}
