// Package health exposes the service liveness endpoint.
package health

import (
	"net/http"
	"time"

	"github.com/lotcarolinas/intake/internal/api"
)

// Integrations reports which optional downstream systems are configured.
type Integrations struct {
	CRM       bool `json:"crm"`
	Datastore bool `json:"datastore"`
}

type healthResponse struct {
	Status       string       `json:"status"`
	Timestamp    string       `json:"timestamp"`
	Integrations Integrations `json:"integrations"`
}

// RegisterRoutes adds the health endpoint to the given mux.
func RegisterRoutes(mux *http.ServeMux, integrations Integrations) {
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, healthResponse{
			Status:       "ok",
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			Integrations: integrations,
		})
	})
}
