package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/volunteerhub/volunteer-signup/internal/watch"
)

// Live streams collection snapshots over server-sent events. Every change
// to the collection re-delivers the entire current result set, mirroring
// the store's push model. The subscription is released when the client
// disconnects (the request context ends).
func Live(hub *watch.Hub, topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		snapshots, err := hub.Subscribe(r.Context(), topic)
		if err != nil {
			writeError(w, http.StatusNotFound, "unknown stream")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for snap := range snapshots {
			payload, err := json.Marshal(snap.Data)
			if err != nil {
				// Leave the client on its last-known snapshot.
				log.Printf("live %s: marshal snapshot: %v", topic, err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", snap.Topic, payload)
			flusher.Flush()
		}
	}
}
