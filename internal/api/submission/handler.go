package submission

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lotcarolinas/intake/internal/api"
	"github.com/lotcarolinas/intake/internal/form"
	"github.com/lotcarolinas/intake/internal/submit"
)

// Handler handles inbound form submissions.
type Handler struct {
	orch *submit.Orchestrator
}

// response is the wire shape of a processed submission.
type response struct {
	Success            bool              `json:"success"`
	Message            string            `json:"message"`
	SubmissionID       string            `json:"submissionId"`
	CRMSubmitted       bool              `json:"crmSubmitted"`
	CRMDetails         *submit.CRMResult `json:"crmDetails"`
	DatastoreSubmitted bool              `json:"datastoreSubmitted"`
	DatastoreID        *int64            `json:"datastoreId"`
}

// Submit handles POST /api/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub form.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := h.orch.Process(r.Context(), sub)
	if err != nil {
		var verr *submit.ValidationError
		if errors.As(err, &verr) {
			api.WriteJSON(w, http.StatusBadRequest, api.ErrorResponse{
				Success:       false,
				Message:       verr.Error(),
				MissingFields: verr.Missing,
			})
			return
		}
		slog.Error("submission processing failed", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "Internal server error. Please try again later.")
		return
	}

	resp := response{
		Success:            true,
		Message:            "Form submitted successfully!",
		SubmissionID:       out.SubmissionID,
		CRMSubmitted:       out.CRMStatus == submit.IntegrationSubmitted,
		CRMDetails:         out.CRMDetails,
		DatastoreSubmitted: out.DatastoreStatus == submit.IntegrationSubmitted,
	}
	if resp.DatastoreSubmitted {
		resp.DatastoreID = &out.DatastoreID
	}
	api.WriteJSON(w, http.StatusOK, resp)
}
