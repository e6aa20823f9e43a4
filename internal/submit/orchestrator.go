// Package submit orchestrates one inbound form submission: validation,
// durable local backup, CRM submission, and datastore insert. Once the
// backup is written, no downstream outage can fail the request.
package submit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lotcarolinas/intake/internal/backup"
	"github.com/lotcarolinas/intake/internal/crm"
	"github.com/lotcarolinas/intake/internal/datastore"
	"github.com/lotcarolinas/intake/internal/form"
)

// ValidationError reports the full set of required fields absent from a
// submission. It is the only user-facing failure besides a backup error.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// IntegrationStatus classifies what happened to one downstream integration.
type IntegrationStatus string

const (
	// IntegrationSkipped means the integration is not configured.
	IntegrationSkipped IntegrationStatus = "skipped"
	// IntegrationFailed means the integration was attempted and errored;
	// the error was logged and swallowed.
	IntegrationFailed IntegrationStatus = "failed"
	// IntegrationSubmitted means the integration accepted the submission.
	IntegrationSubmitted IntegrationStatus = "submitted"
)

// CRMResult carries the ids obtained from the CRM. Each account id is
// independently empty when that resolution failed.
type CRMResult struct {
	ChildAccountID        string `json:"childAccountId,omitempty"`
	CaregiverAccountID    string `json:"caregiverAccountId,omitempty"`
	SocialWorkerAccountID string `json:"socialWorkerAccountId,omitempty"`
	ServiceRecordID       string `json:"serviceRecordId,omitempty"`
}

// Outcome reports what happened to one validated, backed-up submission.
type Outcome struct {
	SubmissionID string

	CRMStatus  IntegrationStatus
	CRMDetails *CRMResult

	DatastoreStatus IntegrationStatus
	DatastoreID     int64
}

// Orchestrator runs the submission pipeline. All collaborators are injected
// at construction; there is no package-level state.
type Orchestrator struct {
	backup *backup.Store
	crm    crm.Capability
	store  datastore.Capability

	resolver *crm.Resolver
	now      func() time.Time
}

// New creates an Orchestrator. The backup store is mandatory; the CRM and
// datastore capabilities may be disabled.
func New(backupStore *backup.Store, crmCap crm.Capability, storeCap datastore.Capability) *Orchestrator {
	o := &Orchestrator{
		backup: backupStore,
		crm:    crmCap,
		store:  storeCap,
		now:    time.Now,
	}
	if crmCap.Enabled {
		o.resolver = crm.NewResolver(crmCap.Client)
	}
	return o
}

// newSubmissionID builds a unique submission identifier from the current
// time and a random suffix.
func (o *Orchestrator) newSubmissionID() string {
	ts := o.now().UTC().Format("20060102_150405")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("submission_%s_%s", ts, suffix)
}

// Process handles one inbound submission. It returns a ValidationError when
// required fields are missing and a plain error when the backup write fails;
// every downstream failure is reported through the Outcome instead.
func (o *Orchestrator) Process(ctx context.Context, sub form.Submission) (*Outcome, error) {
	res := form.Validate(sub, form.RequiredFields(sub))
	if !res.Valid {
		return nil, &ValidationError{Missing: res.Missing}
	}

	submissionID := o.newSubmissionID()

	// The backup is the last-resort record; it must exist before any
	// external system is contacted.
	payload := make(map[string]any, len(sub)+2)
	payload["timestamp"] = o.now().UTC().Format(time.RFC3339)
	payload["submissionId"] = submissionID
	for k, v := range sub {
		payload[k] = v
	}
	if err := o.backup.Write(submissionID, payload); err != nil {
		return nil, fmt.Errorf("backup submission: %w", err)
	}
	slog.Info("submission backed up", "submissionId", submissionID)

	out := &Outcome{
		SubmissionID:    submissionID,
		CRMStatus:       IntegrationSkipped,
		DatastoreStatus: IntegrationSkipped,
	}

	if o.crm.Enabled {
		details, err := o.submitToCRM(ctx, sub)
		if err != nil {
			slog.Error("CRM submission failed, local backup retained", "submissionId", submissionID, "error", err)
			out.CRMStatus = IntegrationFailed
		} else {
			out.CRMStatus = IntegrationSubmitted
			out.CRMDetails = details
		}
	} else {
		slog.Info("CRM not configured, skipping", "submissionId", submissionID)
	}

	if o.store.Enabled {
		rec := recordFromSubmission(sub, submissionID, out.CRMDetails)
		inserted, err := o.store.Store.InsertSubmission(ctx, rec)
		if err != nil {
			slog.Error("datastore insert failed, local backup retained", "submissionId", submissionID, "error", err)
			out.DatastoreStatus = IntegrationFailed
		} else {
			out.DatastoreStatus = IntegrationSubmitted
			out.DatastoreID = inserted.ID
		}
	} else {
		slog.Info("datastore not configured, skipping", "submissionId", submissionID)
	}

	return out, nil
}

// submitToCRM resolves the three accounts and creates the service record.
// The resolutions have no data dependency on each other and run
// concurrently; each failure is isolated so a single bad account degrades
// that reference to empty instead of sinking the others.
func (o *Orchestrator) submitToCRM(ctx context.Context, sub form.Submission) (*CRMResult, error) {
	details := &CRMResult{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lastName := sub.Str("childLastName")
		if lastName == "" {
			lastName = sub.Str("childLastInitial")
		}
		acct, err := o.resolver.Resolve(gctx, crm.Identity{
			FirstName: sub.Str("childFirstName"),
			LastName:  lastName,
		})
		if err != nil {
			slog.Error("child account resolution failed", "error", err)
			return nil
		}
		details.ChildAccountID = acct.ID
		return nil
	})

	g.Go(func() error {
		phone := sub.Str("caregiverPhone")
		if phone == "" {
			phone = sub.Str("alternativePhone")
		}
		acct, err := o.resolver.Resolve(gctx, crm.Identity{
			FirstName: sub.Str("caregiverFirstName"),
			LastName:  sub.Str("caregiverLastName"),
			Email:     sub.Str("caregiverEmail"),
			Phone:     phone,
			Street:    sub.Str("caregiverStreet"),
			City:      sub.Str("caregiverCity"),
			State:     sub.Str("caregiverState"),
			Zip:       sub.Str("caregiverZip"),
			County:    sub.Str("caregiverCounty"),
		})
		if err != nil {
			slog.Error("caregiver account resolution failed", "error", err)
			return nil
		}
		details.CaregiverAccountID = acct.ID
		return nil
	})

	g.Go(func() error {
		if sub.Str("socialWorkerFirstName") == "" || sub.Str("socialWorkerLastName") == "" {
			return nil
		}
		phone := sub.Str("socialWorkerPhone")
		if phone == "" {
			phone = sub.Str("alternativeSocialWorkerPhone")
		}
		acct, err := o.resolver.Resolve(gctx, crm.Identity{
			FirstName: sub.Str("socialWorkerFirstName"),
			LastName:  sub.Str("socialWorkerLastName"),
			Email:     sub.Str("socialWorkerEmail"),
			Phone:     phone,
		})
		if err != nil {
			slog.Error("social worker account resolution failed", "error", err)
			return nil
		}
		details.SocialWorkerAccountID = acct.ID
		return nil
	})

	// Resolution errors are swallowed above, so Wait only joins.
	_ = g.Wait()

	fields := serviceFields(sub, details.ChildAccountID, details.CaregiverAccountID,
		details.SocialWorkerAccountID, o.now())

	recordID, err := o.crm.Client.CreateCustomRecord(ctx, "Service_c", fields)
	if err != nil {
		// The accounts may still exist; report them with an empty record id.
		slog.Error("service record creation failed", "error", err)
	} else {
		details.ServiceRecordID = recordID
	}

	return details, nil
}

// recordFromSubmission maps the form onto a datastore row, carrying over
// whichever CRM reference ids were obtained.
func recordFromSubmission(sub form.Submission, submissionID string, crmDetails *CRMResult) *datastore.SubmissionRecord {
	rec := &datastore.SubmissionRecord{
		SubmissionID: submissionID,

		RequestType:           sub.Str("requestType"),
		GeneralRequestSubType: sub.Str("generalRequestSubType"),
		Relationship:          sub.Str("relationship"),

		CaregiverFirstName: sub.Str("caregiverFirstName"),
		CaregiverLastName:  sub.Str("caregiverLastName"),
		CaregiverEmail:     sub.Str("caregiverEmail"),
		CaregiverPhone:     sub.Str("caregiverPhone"),
		AlternativePhone:   sub.Str("alternativePhone"),
		CaregiverStreet:    sub.Str("caregiverStreet"),
		CaregiverCity:      sub.Str("caregiverCity"),
		CaregiverState:     sub.Str("caregiverState"),
		CaregiverZip:       sub.Str("caregiverZip"),
		CaregiverCounty:    sub.Str("caregiverCounty"),

		SocialWorkerFirstName:        sub.Str("socialWorkerFirstName"),
		SocialWorkerLastName:         sub.Str("socialWorkerLastName"),
		SocialWorkerEmail:            sub.Str("socialWorkerEmail"),
		SocialWorkerPhone:            sub.Str("socialWorkerPhone"),
		AlternativeSocialWorkerPhone: sub.Str("alternativeSocialWorkerPhone"),
		SocialWorkerCounty:           sub.Str("socialWorkerCounty"),

		ChildFirstName:     sub.Str("childFirstName"),
		ChildLastName:      sub.Str("childLastName"),
		ChildAge:           sub.Str("childAge"),
		ChildDOB:           sub.Str("childDOB"),
		ChildGender:        sub.Str("childGender"),
		ChildEthnicity:     sub.Str("childEthnicity"),
		ChildPlacementType: sub.Str("childPlacementType"),

		PickupDate:        sub.Str("pickupDate"),
		PickupTime:        sub.Str("pickupTime"),
		PickupLocation:    sub.Str("pickupLocation"),
		CompletionContact: sub.Str("completionContact"),
		IsLicensedFoster:  sub.Str("isLicensedFoster"),
		LicensingAgency:   sub.Str("licensingAgency"),
		AdditionalInfo:    sub.Str("additionalInfo"),
	}
	if rec.ChildLastName == "" {
		rec.ChildLastName = sub.Str("childLastInitial")
	}
	if crmDetails != nil {
		rec.NeonCaregiverID = crmDetails.CaregiverAccountID
		rec.NeonSocialWorkerID = crmDetails.SocialWorkerAccountID
		rec.NeonServiceID = crmDetails.ServiceRecordID
	}
	return rec
}
