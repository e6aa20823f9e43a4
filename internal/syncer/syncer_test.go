package syncer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lotcarolinas/intake/internal/crm"
	"github.com/lotcarolinas/intake/internal/datastore"
	"github.com/lotcarolinas/intake/internal/syncer"
)

func TestShouldSync(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	tests := []struct {
		name     string
		local    *time.Time
		incoming time.Time
		want     bool
	}{
		{"nil local always syncs", nil, t1, true},
		{"incoming newer", &t1, t2, true},
		{"incoming older", &t2, t1, false},
		{"simultaneous", &t1, t1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := syncer.ShouldSync(tt.local, tt.incoming); got != tt.want {
				t.Errorf("ShouldSync = %v, want %v", got, tt.want)
			}
		})
	}
}

// fakeStore is an in-memory datastore.Store for coordinator tests.
type fakeStore struct {
	records  []*datastore.SubmissionRecord
	updates  map[int64]map[string]string
	queryErr error
	updErr   error
}

func (f *fakeStore) InsertSubmission(_ context.Context, rec *datastore.SubmissionRecord) (*datastore.SubmissionRecord, error) {
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) UpdateSubmission(_ context.Context, id int64, fields map[string]string) (*datastore.SubmissionRecord, error) {
	if f.updErr != nil {
		return nil, f.updErr
	}
	if f.updates == nil {
		f.updates = make(map[int64]map[string]string)
	}
	f.updates[id] = fields
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, datastore.ErrNotFound
}

func (f *fakeStore) GetBySubmissionID(_ context.Context, submissionID string) (*datastore.SubmissionRecord, error) {
	for _, r := range f.records {
		if r.SubmissionID == submissionID {
			return r, nil
		}
	}
	return nil, datastore.ErrNotFound
}

func (f *fakeStore) QueryByAccountID(_ context.Context, role datastore.AccountRole, accountID string) ([]*datastore.SubmissionRecord, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []*datastore.SubmissionRecord
	for _, r := range f.records {
		if role == datastore.RoleCaregiver && r.NeonCaregiverID == accountID {
			out = append(out, r)
		}
	}
	return out, nil
}

var _ datastore.Store = (*fakeStore)(nil)

// fakeCRM records update calls for the reverse direction.
type fakeCRM struct {
	account    *crm.Account
	getErr     error
	updateErr  error
	updated    []string
	identities []crm.Identity
}

func (f *fakeCRM) SearchAccountByEmail(context.Context, string) (*crm.Account, error) {
	return nil, nil
}
func (f *fakeCRM) SearchAccountByName(context.Context, string, string) (*crm.Account, error) {
	return nil, nil
}
func (f *fakeCRM) GetAccount(context.Context, string) (*crm.Account, error) {
	return f.account, f.getErr
}
func (f *fakeCRM) CreateAccount(_ context.Context, identity crm.Identity) (*crm.Account, error) {
	return &crm.Account{ID: "new"}, nil
}
func (f *fakeCRM) UpdateAccount(_ context.Context, id string, identity crm.Identity) (*crm.Account, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = append(f.updated, id)
	f.identities = append(f.identities, identity)
	return &crm.Account{ID: id}, nil
}
func (f *fakeCRM) CreateCustomRecord(context.Context, string, map[string]any) (string, error) {
	return "", nil
}

var _ crm.Client = (*fakeCRM)(nil)

func record(id int64, caregiverID, updatedAt string) *datastore.SubmissionRecord {
	return &datastore.SubmissionRecord{
		ID:                 id,
		SubmissionID:       "sub",
		NeonCaregiverID:    caregiverID,
		CaregiverFirstName: "Old",
		CaregiverLastName:  "Name",
		AlternativePhone:   "704-555-0000",
		UpdatedAt:          updatedAt,
	}
}

func TestSyncCRMToStoreUpdatesStaleRecords(t *testing.T) {
	fs := &fakeStore{records: []*datastore.SubmissionRecord{
		record(1, "cg-1", "2025-06-01T00:00:00.000Z"),
		record(2, "cg-1", "2025-06-03T00:00:00.000Z"), // newer than incoming
		record(3, "cg-other", "2025-06-01T00:00:00.000Z"),
	}}
	c := syncer.New(fs, crm.Capability{})

	incoming := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	res := c.SyncCRMToStore(context.Background(), "cg-1", crm.Account{
		FirstName: "Dana",
		LastName:  "Reyes",
		Email:     "dana@example.com",
		Phone:     "704-555-0188",
		Address:   &crm.Address{Street: "12 Oak St", City: "Gastonia", State: "NC", Zip: "28052", County: "Gaston"},
	}, incoming)

	if res.Status != syncer.StatusSynced {
		t.Fatalf("Status = %q, want synced (%s)", res.Status, res.Message)
	}
	if res.Updated != 1 {
		t.Errorf("Updated = %d, want 1", res.Updated)
	}
	if _, ok := fs.updates[2]; ok {
		t.Error("record 2 is newer and must not be updated")
	}
	upd := fs.updates[1]
	if upd["caregiver_first_name"] != "Dana" || upd["caregiver_county"] != "Gaston" {
		t.Errorf("unexpected updates: %v", upd)
	}
}

func TestSyncCRMToStoreNoMatch(t *testing.T) {
	c := syncer.New(&fakeStore{}, crm.Capability{})

	res := c.SyncCRMToStore(context.Background(), "cg-unknown", crm.Account{}, time.Now())
	if res.Status != syncer.StatusNoMatch {
		t.Errorf("Status = %q, want no_matching_records", res.Status)
	}
}

func TestSyncCRMToStoreAllSkipped(t *testing.T) {
	fs := &fakeStore{records: []*datastore.SubmissionRecord{
		record(1, "cg-1", "2025-06-03T00:00:00.000Z"),
	}}
	c := syncer.New(fs, crm.Capability{})

	res := c.SyncCRMToStore(context.Background(), "cg-1", crm.Account{},
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	if res.Status != syncer.StatusSkipped {
		t.Errorf("Status = %q, want skipped", res.Status)
	}
}

func TestSyncCRMToStoreUpdateFailure(t *testing.T) {
	fs := &fakeStore{
		records: []*datastore.SubmissionRecord{record(1, "cg-1", "")},
		updErr:  errors.New("disk full"),
	}
	c := syncer.New(fs, crm.Capability{})

	res := c.SyncCRMToStore(context.Background(), "cg-1", crm.Account{}, time.Now())
	if res.Status != syncer.StatusFailed {
		t.Errorf("Status = %q, want failed", res.Status)
	}
}

func TestSyncStoreToCRMNotConfigured(t *testing.T) {
	c := syncer.New(&fakeStore{}, crm.Capability{Enabled: false})

	res := c.SyncStoreToCRM(context.Background(), record(1, "cg-1", ""), time.Now())
	if res.Status != syncer.StatusNotConfigured {
		t.Errorf("Status = %q, want not_configured", res.Status)
	}
}

func TestSyncStoreToCRMNoAccountID(t *testing.T) {
	fc := &fakeCRM{}
	c := syncer.New(&fakeStore{}, crm.Capability{Enabled: true, Client: fc})

	res := c.SyncStoreToCRM(context.Background(), record(1, "", ""), time.Now())
	if res.Status != syncer.StatusNoMatch {
		t.Errorf("Status = %q, want no_matching_records", res.Status)
	}
	if len(fc.updated) != 0 {
		t.Error("no update expected without an account id")
	}
}

func TestSyncStoreToCRMUpdates(t *testing.T) {
	fc := &fakeCRM{account: &crm.Account{ID: "cg-1", LastModified: "2025-06-01T00:00:00Z"}}
	c := syncer.New(&fakeStore{}, crm.Capability{Enabled: true, Client: fc})

	rec := record(1, "cg-1", "")
	rec.CaregiverPhone = "" // force phone fallback

	res := c.SyncStoreToCRM(context.Background(), rec,
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))

	if res.Status != syncer.StatusSynced || res.Updated != 1 {
		t.Fatalf("res = %+v, want synced/1", res)
	}
	if len(fc.identities) != 1 {
		t.Fatal("expected one update")
	}
	if fc.identities[0].Phone != "704-555-0000" {
		t.Errorf("Phone = %q, want alternative phone fallback", fc.identities[0].Phone)
	}
}

func TestSyncStoreToCRMSkippedWhenCRMNewer(t *testing.T) {
	fc := &fakeCRM{account: &crm.Account{ID: "cg-1", LastModified: "2025-06-03T00:00:00Z"}}
	c := syncer.New(&fakeStore{}, crm.Capability{Enabled: true, Client: fc})

	res := c.SyncStoreToCRM(context.Background(), record(1, "cg-1", ""),
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))

	if res.Status != syncer.StatusSkipped {
		t.Errorf("Status = %q, want skipped", res.Status)
	}
	if len(fc.updated) != 0 {
		t.Error("update must not run when the CRM copy is newer")
	}
}

func TestSyncStoreToCRMUnknownTimestampSyncs(t *testing.T) {
	// A failed account read leaves the local instant unknown, which counts
	// as no local record.
	fc := &fakeCRM{getErr: errors.New("unavailable")}
	c := syncer.New(&fakeStore{}, crm.Capability{Enabled: true, Client: fc})

	res := c.SyncStoreToCRM(context.Background(), record(1, "cg-1", ""), time.Now())
	if res.Status != syncer.StatusSynced {
		t.Errorf("Status = %q, want synced", res.Status)
	}
}

func TestSyncCRMToStoreWithoutDatastore(t *testing.T) {
	c := syncer.New(nil, crm.Capability{})

	res := c.SyncCRMToStore(context.Background(), "cg-1", crm.Account{ID: "cg-1"}, time.Now())
	if res.Status != syncer.StatusNotConfigured {
		t.Errorf("Status = %q, want not_configured", res.Status)
	}
}
