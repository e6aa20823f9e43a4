package webhooks

import (
	"net/http"

	"github.com/lotcarolinas/intake/internal/syncer"
)

// RegisterRoutes mounts the webhook endpoints on mux.
func RegisterRoutes(mux *http.ServeMux, sync *syncer.Coordinator, secrets Secrets) {
	h := &Handler{sync: sync, secrets: secrets}

	mux.HandleFunc("POST /api/webhooks/neon", h.Neon)
	mux.HandleFunc("POST /api/webhooks/datastore", h.Datastore)
}
