package submission

import (
	"net/http"

	"github.com/lotcarolinas/intake/internal/submit"
)

// RegisterRoutes adds the form submission endpoint to the given mux.
func RegisterRoutes(mux *http.ServeMux, orch *submit.Orchestrator) {
	h := &Handler{orch: orch}

	mux.HandleFunc("POST /api/submit", h.Submit)
}
