// Package adminhttp exposes the diagnostics hub over a small read-only
// JSON surface, the counterpart of the teacher's much larger embedded
// admin UI. MFS has no files, tokens, or disk images to administer
// remotely, so there is nothing here to mutate — only /stats, /events and
// /files, each a single JSON GET.
package adminhttp

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mfsd/internal/diag"
)

// Registry is the subset of *mfs.Server needed to list registered files.
type Registry interface {
	Files() [][]byte
}

// Handler builds the admin mux. hub may be nil, in which case /stats and
// /events report an empty hub rather than panicking.
func Handler(hub *diag.Hub, reg Registry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			writeJSON(w, diag.StatsSnapshot{})
			return
		}
		writeJSON(w, hub.Stats())
	})

	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if hub == nil {
			writeJSON(w, []diag.Event{})
			return
		}
		writeJSON(w, hub.Events(limit))
	})

	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		names := reg.Files()
		out := make([]string, 0, len(names))
		for _, n := range names {
			out = append(out, string(n))
		}
		writeJSON(w, out)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
