package webhooks

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lotcarolinas/intake/internal/api"
	"github.com/lotcarolinas/intake/internal/crm"
	"github.com/lotcarolinas/intake/internal/datastore"
	"github.com/lotcarolinas/intake/internal/syncer"
)

// Secrets holds the per-source webhook signing secrets. An empty secret
// disables verification for that source.
type Secrets struct {
	Neon      string
	Datastore string
}

// Handler handles inbound sync webhooks from both external systems.
type Handler struct {
	sync    *syncer.Coordinator
	secrets Secrets
}

// webhookResponse is the wire shape of a processed webhook.
type webhookResponse struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	SyncResult *syncer.Result `json:"syncResult,omitempty"`
}

// readVerified reads the request body and checks its signature against the
// given secret. A false return means the response has been written.
func readVerified(w http.ResponseWriter, r *http.Request, secret string) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Unreadable request body")
		return nil, false
	}
	if !api.VerifySignature(secret, body, r.Header.Get(api.SignatureHeader)) {
		slog.Warn("webhook signature mismatch", "path", r.URL.Path)
		api.WriteError(w, http.StatusUnauthorized, "Invalid webhook signature")
		return nil, false
	}
	return body, true
}

// ignored reports an unrecognized event as success so the sender does not
// retry it.
func ignored(w http.ResponseWriter) {
	api.WriteJSON(w, http.StatusOK, webhookResponse{Success: true, Message: "Event ignored"})
}

// neonPayload is the CRM's account-update webhook shape.
type neonPayload struct {
	EventType string `json:"eventType"`
	AccountID string `json:"accountId"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Addresses []struct {
			Street string `json:"street"`
			City   string `json:"city"`
			State  string `json:"state"`
			Zip    string `json:"zip"`
			County string `json:"county"`
		} `json:"addresses"`
	} `json:"data"`
}

// Neon handles POST /api/webhooks/neon: a CRM account update that may need
// to propagate to the datastore.
func (h *Handler) Neon(w http.ResponseWriter, r *http.Request) {
	body, ok := readVerified(w, r, h.secrets.Neon)
	if !ok {
		return
	}

	var payload neonPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	if payload.EventType != "account.updated" {
		slog.Info("ignoring webhook event", "eventType", payload.EventType)
		ignored(w)
		return
	}

	ts, err := time.Parse(time.RFC3339, payload.Timestamp)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid webhook timestamp")
		return
	}

	acct := crm.Account{
		ID:        payload.AccountID,
		FirstName: payload.Data.FirstName,
		LastName:  payload.Data.LastName,
		Email:     payload.Data.Email,
		Phone:     payload.Data.Phone,
	}
	if len(payload.Data.Addresses) > 0 {
		a := payload.Data.Addresses[0]
		acct.Address = &crm.Address{Street: a.Street, City: a.City, State: a.State, Zip: a.Zip, County: a.County}
	}

	result := h.sync.SyncCRMToStore(r.Context(), payload.AccountID, acct, ts)
	api.WriteJSON(w, http.StatusOK, webhookResponse{
		Success:    true,
		Message:    "Webhook processed",
		SyncResult: &result,
	})
}

// datastorePayload is the row-change webhook shape emitted by the datastore.
type datastorePayload struct {
	Type   string          `json:"type"`
	Table  string          `json:"table"`
	Record json.RawMessage `json:"record"`
}

// datastoreRow is the snake_case row shape carried in the webhook.
type datastoreRow struct {
	ID                 int64  `json:"id"`
	SubmissionID       string `json:"submission_id"`
	NeonCaregiverID    string `json:"neon_caregiver_id"`
	CaregiverFirstName string `json:"caregiver_first_name"`
	CaregiverLastName  string `json:"caregiver_last_name"`
	CaregiverEmail     string `json:"caregiver_email"`
	CaregiverPhone     string `json:"caregiver_phone"`
	AlternativePhone   string `json:"alternative_phone"`
	CaregiverStreet    string `json:"caregiver_street"`
	CaregiverCity      string `json:"caregiver_city"`
	CaregiverState     string `json:"caregiver_state"`
	CaregiverZip       string `json:"caregiver_zip"`
	CaregiverCounty    string `json:"caregiver_county"`
	UpdatedAt          string `json:"updated_at"`
}

// Datastore handles POST /api/webhooks/datastore: a submissions-row update
// that may need to propagate back to the CRM.
func (h *Handler) Datastore(w http.ResponseWriter, r *http.Request) {
	body, ok := readVerified(w, r, h.secrets.Datastore)
	if !ok {
		return
	}

	var payload datastorePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	if payload.Table != "submissions" {
		slog.Info("ignoring webhook for table", "table", payload.Table)
		ignored(w)
		return
	}
	if payload.Type != "UPDATE" {
		slog.Info("ignoring webhook event", "type", payload.Type)
		ignored(w)
		return
	}

	var row datastoreRow
	if err := json.Unmarshal(payload.Record, &row); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid webhook record")
		return
	}

	ts, err := time.Parse(time.RFC3339, row.UpdatedAt)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid webhook timestamp")
		return
	}

	rec := &datastore.SubmissionRecord{
		ID:                 row.ID,
		SubmissionID:       row.SubmissionID,
		NeonCaregiverID:    row.NeonCaregiverID,
		CaregiverFirstName: row.CaregiverFirstName,
		CaregiverLastName:  row.CaregiverLastName,
		CaregiverEmail:     row.CaregiverEmail,
		CaregiverPhone:     row.CaregiverPhone,
		AlternativePhone:   row.AlternativePhone,
		CaregiverStreet:    row.CaregiverStreet,
		CaregiverCity:      row.CaregiverCity,
		CaregiverState:     row.CaregiverState,
		CaregiverZip:       row.CaregiverZip,
		CaregiverCounty:    row.CaregiverCounty,
		UpdatedAt:          row.UpdatedAt,
	}

	result := h.sync.SyncStoreToCRM(r.Context(), rec, ts)
	api.WriteJSON(w, http.StatusOK, webhookResponse{
		Success:    true,
		Message:    "Webhook processed",
		SyncResult: &result,
	})
}
