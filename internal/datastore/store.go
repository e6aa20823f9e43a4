package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// AccountRole selects which CRM reference column a query matches against.
type AccountRole string

const (
	RoleCaregiver    AccountRole = "caregiver"
	RoleSocialWorker AccountRole = "social_worker"
)

// SubmissionRecord is one row of the submissions table: the original form
// fields plus the CRM reference ids and sync metadata. The three Neon ids
// are independently nullable; an empty string stores as NULL.
type SubmissionRecord struct {
	ID           int64  `json:"id"`
	SubmissionID string `json:"submissionId"`

	NeonCaregiverID    string `json:"neonCaregiverId,omitempty"`
	NeonSocialWorkerID string `json:"neonSocialWorkerId,omitempty"`
	NeonServiceID      string `json:"neonServiceId,omitempty"`

	RequestType           string `json:"requestType,omitempty"`
	GeneralRequestSubType string `json:"generalRequestSubType,omitempty"`
	Relationship          string `json:"relationship,omitempty"`

	CaregiverFirstName string `json:"caregiverFirstName,omitempty"`
	CaregiverLastName  string `json:"caregiverLastName,omitempty"`
	CaregiverEmail     string `json:"caregiverEmail,omitempty"`
	CaregiverPhone     string `json:"caregiverPhone,omitempty"`
	AlternativePhone   string `json:"alternativePhone,omitempty"`
	CaregiverStreet    string `json:"caregiverStreet,omitempty"`
	CaregiverCity      string `json:"caregiverCity,omitempty"`
	CaregiverState     string `json:"caregiverState,omitempty"`
	CaregiverZip       string `json:"caregiverZip,omitempty"`
	CaregiverCounty    string `json:"caregiverCounty,omitempty"`

	SocialWorkerFirstName        string `json:"socialWorkerFirstName,omitempty"`
	SocialWorkerLastName         string `json:"socialWorkerLastName,omitempty"`
	SocialWorkerEmail            string `json:"socialWorkerEmail,omitempty"`
	SocialWorkerPhone            string `json:"socialWorkerPhone,omitempty"`
	AlternativeSocialWorkerPhone string `json:"alternativeSocialWorkerPhone,omitempty"`
	SocialWorkerCounty           string `json:"socialWorkerCounty,omitempty"`

	ChildFirstName     string `json:"childFirstName,omitempty"`
	ChildLastName      string `json:"childLastName,omitempty"`
	ChildAge           string `json:"childAge,omitempty"`
	ChildDOB           string `json:"childDOB,omitempty"`
	ChildGender        string `json:"childGender,omitempty"`
	ChildEthnicity     string `json:"childEthnicity,omitempty"`
	ChildPlacementType string `json:"childPlacementType,omitempty"`

	PickupDate        string `json:"pickupDate,omitempty"`
	PickupTime        string `json:"pickupTime,omitempty"`
	PickupLocation    string `json:"pickupLocation,omitempty"`
	CompletionContact string `json:"completionContact,omitempty"`
	IsLicensedFoster  string `json:"isLicensedFoster,omitempty"`
	LicensingAgency   string `json:"licensingAgency,omitempty"`
	AdditionalInfo    string `json:"additionalInfo,omitempty"`

	SyncStatus   string `json:"syncStatus"`
	LastSyncedAt string `json:"lastSyncedAt,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// Store defines the relational datastore consumed by the orchestrator and
// the sync coordinator.
type Store interface {
	InsertSubmission(ctx context.Context, rec *SubmissionRecord) (*SubmissionRecord, error)
	UpdateSubmission(ctx context.Context, id int64, fields map[string]string) (*SubmissionRecord, error)
	GetBySubmissionID(ctx context.Context, submissionID string) (*SubmissionRecord, error)
	QueryByAccountID(ctx context.Context, role AccountRole, accountID string) ([]*SubmissionRecord, error)
}

// ErrNotFound is returned when a requested submission row does not exist.
var ErrNotFound = fmt.Errorf("submission not found")

// SQLiteStore implements Store backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// now returns the current UTC time in RFC 3339 form with millisecond
// precision, the timestamp format used across the submissions table.
func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// columns lists every data column in insert order. Scan targets in
// recordFields must stay aligned with this list.
var columns = []string{
	"submission_id",
	"neon_caregiver_id", "neon_social_worker_id", "neon_service_id",
	"request_type", "general_request_sub_type", "relationship",
	"caregiver_first_name", "caregiver_last_name", "caregiver_email",
	"caregiver_phone", "alternative_phone",
	"caregiver_street", "caregiver_city", "caregiver_state", "caregiver_zip", "caregiver_county",
	"social_worker_first_name", "social_worker_last_name", "social_worker_email",
	"social_worker_phone", "alternative_social_worker_phone", "social_worker_county",
	"child_first_name", "child_last_name", "child_age", "child_dob",
	"child_gender", "child_ethnicity", "child_placement_type",
	"pickup_date", "pickup_time", "pickup_location",
	"completion_contact", "is_licensed_foster", "licensing_agency", "additional_info",
	"sync_status", "last_synced_at", "created_at", "updated_at",
}

func recordFields(r *SubmissionRecord) []*string {
	return []*string{
		&r.SubmissionID,
		&r.NeonCaregiverID, &r.NeonSocialWorkerID, &r.NeonServiceID,
		&r.RequestType, &r.GeneralRequestSubType, &r.Relationship,
		&r.CaregiverFirstName, &r.CaregiverLastName, &r.CaregiverEmail,
		&r.CaregiverPhone, &r.AlternativePhone,
		&r.CaregiverStreet, &r.CaregiverCity, &r.CaregiverState, &r.CaregiverZip, &r.CaregiverCounty,
		&r.SocialWorkerFirstName, &r.SocialWorkerLastName, &r.SocialWorkerEmail,
		&r.SocialWorkerPhone, &r.AlternativeSocialWorkerPhone, &r.SocialWorkerCounty,
		&r.ChildFirstName, &r.ChildLastName, &r.ChildAge, &r.ChildDOB,
		&r.ChildGender, &r.ChildEthnicity, &r.ChildPlacementType,
		&r.PickupDate, &r.PickupTime, &r.PickupLocation,
		&r.CompletionContact, &r.IsLicensedFoster, &r.LicensingAgency, &r.AdditionalInfo,
		&r.SyncStatus, &r.LastSyncedAt, &r.CreatedAt, &r.UpdatedAt,
	}
}

// nullable maps the empty string to NULL for storage.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// InsertSubmission inserts a new submission row, stamping created_at,
// updated_at, sync_status and last_synced_at.
func (s *SQLiteStore) InsertSubmission(ctx context.Context, rec *SubmissionRecord) (*SubmissionRecord, error) {
	ts := now()
	rec.SyncStatus = "synced"
	rec.LastSyncedAt = ts
	rec.CreatedAt = ts
	rec.UpdatedAt = ts

	args := make([]any, 0, len(columns))
	for _, f := range recordFields(rec) {
		args = append(args, nullable(*f))
	}

	query := fmt.Sprintf("INSERT INTO submissions (%s) VALUES (%s)",
		strings.Join(columns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	rec.ID = id
	return rec, nil
}

// updatableColumns whitelists the columns a sync update may touch.
var updatableColumns = map[string]bool{
	"caregiver_first_name": true,
	"caregiver_last_name":  true,
	"caregiver_email":      true,
	"caregiver_phone":      true,
	"caregiver_street":     true,
	"caregiver_city":       true,
	"caregiver_state":      true,
	"caregiver_zip":        true,
	"caregiver_county":     true,
	"sync_status":          true,
	"last_synced_at":       true,
}

// UpdateSubmission applies the given column updates to one row and stamps
// updated_at. Unknown columns are rejected.
func (s *SQLiteStore) UpdateSubmission(ctx context.Context, id int64, fields map[string]string) (*SubmissionRecord, error) {
	if len(fields) == 0 {
		return s.getByRowID(ctx, id)
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for col, val := range fields {
		if !updatableColumns[col] {
			return nil, fmt.Errorf("column %q is not updatable", col)
		}
		sets = append(sets, col+" = ?")
		args = append(args, nullable(val))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now(), id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE submissions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update submission %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return s.getByRowID(ctx, id)
}

func (s *SQLiteStore) scanRow(row *sql.Row) (*SubmissionRecord, error) {
	var rec SubmissionRecord
	fields := recordFields(&rec)

	dest := make([]any, 0, len(fields)+1)
	dest = append(dest, &rec.ID)
	nulls := make([]sql.NullString, len(fields))
	for i := range nulls {
		dest = append(dest, &nulls[i])
	}

	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	for i, f := range fields {
		*f = nulls[i].String
	}
	return &rec, nil
}

func (s *SQLiteStore) getByRowID(ctx context.Context, id int64) (*SubmissionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT id, %s FROM submissions WHERE id = ?", strings.Join(columns, ", ")), id)
	return s.scanRow(row)
}

// GetBySubmissionID retrieves one row by its submission identifier.
func (s *SQLiteStore) GetBySubmissionID(ctx context.Context, submissionID string) (*SubmissionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT id, %s FROM submissions WHERE submission_id = ?", strings.Join(columns, ", ")), submissionID)
	return s.scanRow(row)
}

// QueryByAccountID returns every row whose CRM reference column for the
// given role equals accountID. An empty result is not an error.
func (s *SQLiteStore) QueryByAccountID(ctx context.Context, role AccountRole, accountID string) ([]*SubmissionRecord, error) {
	var col string
	switch role {
	case RoleCaregiver:
		col = "neon_caregiver_id"
	case RoleSocialWorker:
		col = "neon_social_worker_id"
	default:
		return nil, fmt.Errorf("unknown account role %q", role)
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT id, %s FROM submissions WHERE %s = ?", strings.Join(columns, ", "), col), accountID)
	if err != nil {
		return nil, fmt.Errorf("query submissions by %s: %w", col, err)
	}
	defer func() { _ = rows.Close() }()

	var recs []*SubmissionRecord
	for rows.Next() {
		var rec SubmissionRecord
		fields := recordFields(&rec)

		dest := make([]any, 0, len(fields)+1)
		dest = append(dest, &rec.ID)
		nulls := make([]sql.NullString, len(fields))
		for i := range nulls {
			dest = append(dest, &nulls[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		for i, f := range fields {
			*f = nulls[i].String
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return recs, nil
}
