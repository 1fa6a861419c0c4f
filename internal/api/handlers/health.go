package handlers

import (
	"net/http"
)

// Health returns a liveness check that also names the cache backend the
// process was wired with, so a probe can tell deployments apart.
func Health(cacheBackend string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		res := map[string]string{
			"status":        "ok",
			"cache_backend": cacheBackend,
		}
		writeJSON(w, r, http.StatusOK, res)
	}
}
