package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/lotcarolinas/intake/internal/backup"
	"github.com/lotcarolinas/intake/internal/crm"
	"github.com/lotcarolinas/intake/internal/database"
	"github.com/lotcarolinas/intake/internal/datastore"
	"github.com/lotcarolinas/intake/internal/submit"
	"github.com/lotcarolinas/intake/internal/testhelpers"
)

func validBody() map[string]any {
	return map[string]any{
		"requestType":           "General Request",
		"generalRequestSubType": "Clothing",
		"relationship":          "Foster Parent",
		"socialWorkerFirstName": "Sam",
		"socialWorkerLastName":  "Lee",
		"socialWorkerEmail":     "sam.lee@example.org",
		"socialWorkerCounty":    "Lancaster, SC",
		"socialWorkerPhone":     "8035559999",
		"completionContact":     "Caregiver",
		"pickupDate":            "2025-07-01",
		"pickupTime":            "10:00 AM",
		"pickupLocation":        "Indian Land Drop Off/Pick Up",
		"caregiverFirstName":    "Dana",
		"caregiverLastName":     "Reyes",
		"caregiverPhone":        "8035551111",
		"caregiverStreet":       "12 Oak St",
		"caregiverCity":         "Fort Mill",
		"caregiverState":        "SC",
		"caregiverZip":          "29715",
		"caregiverCounty":       "York, SC",
		"knowCaregiverEmail":    "no",
		"childFirstName":        "Ari",
		"childLastName":         "Reyes",
		"childPlacementType":    "Foster Care",
		"childGender":           "Female",
		"childAge":              "7",
		"childDOB":              "2018-03-02",
		"childEthnicity":        "Unknown",
		"isLicensedFoster":      "No",
		"agreeToTerms":          true,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, string, datastore.Store) {
	t.Helper()

	db := testhelpers.NewTestDB(t)
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := datastore.NewSQLiteStore(db)

	backupDir := t.TempDir()
	orch := submit.New(
		backup.NewStore(backupDir),
		crm.Capability{},
		datastore.Capability{Enabled: true, Store: store},
	)

	mux := http.NewServeMux()
	RegisterRoutes(mux, orch)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, backupDir, store
}

func TestSubmitSuccess(t *testing.T) {
	srv, backupDir, store := newTestServer(t)

	body, _ := json.Marshal(validBody())
	resp, err := http.Post(srv.URL+"/api/submit", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if !decoded.Success {
		t.Error("success = false, want true")
	}
	if decoded.SubmissionID == "" {
		t.Fatal("submissionId is empty")
	}
	if decoded.CRMSubmitted {
		t.Error("crmSubmitted = true with CRM disabled")
	}
	if !decoded.DatastoreSubmitted {
		t.Error("datastoreSubmitted = false, want true")
	}
	if decoded.DatastoreID == nil {
		t.Fatal("datastoreId missing for a stored submission")
	}

	// Backup file exists and carries the submission id.
	raw, err := os.ReadFile(filepath.Join(backupDir, decoded.SubmissionID+".json"))
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	var saved map[string]any
	if err := json.Unmarshal(raw, &saved); err != nil {
		t.Fatalf("parsing backup: %v", err)
	}
	if saved["submissionId"] != decoded.SubmissionID {
		t.Errorf("backup submissionId = %v, want %s", saved["submissionId"], decoded.SubmissionID)
	}

	// Row is queryable by its submission id.
	rec, err := store.GetBySubmissionID(context.Background(), decoded.SubmissionID)
	if err != nil {
		t.Fatalf("GetBySubmissionID: %v", err)
	}
	if rec.CaregiverFirstName != "Dana" || rec.ChildFirstName != "Ari" {
		t.Errorf("stored row = %+v", rec)
	}
}

func TestSubmitValidationFailure(t *testing.T) {
	srv, backupDir, _ := newTestServer(t)

	sub := validBody()
	delete(sub, "childFirstName")
	delete(sub, "agreeToTerms")
	body, _ := json.Marshal(sub)

	resp, err := http.Post(srv.URL+"/api/submit", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var decoded struct {
		Success       bool     `json:"success"`
		Message       string   `json:"message"`
		MissingFields []string `json:"missingFields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if decoded.Success {
		t.Error("success = true on validation failure")
	}
	want := map[string]bool{"childFirstName": true, "agreeToTerms": true}
	if len(decoded.MissingFields) != 2 {
		t.Fatalf("missingFields = %v, want both omitted fields", decoded.MissingFields)
	}
	for _, f := range decoded.MissingFields {
		if !want[f] {
			t.Errorf("unexpected missing field %q", f)
		}
	}

	// Invalid submissions are never backed up.
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatalf("reading backup dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("backup dir has %d entries, want 0", len(entries))
	}
}

func TestSubmitMalformedBody(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/submit", "application/json", bytes.NewReader([]byte("{broken")))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
