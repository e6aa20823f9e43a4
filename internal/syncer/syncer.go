// Package syncer propagates updates between the CRM and the local datastore,
// resolving conflicts by last write wins: the update bearing the newer
// timestamp overwrites, older or equal-timestamp updates are discarded.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lotcarolinas/intake/internal/crm"
	"github.com/lotcarolinas/intake/internal/datastore"
)

// Status classifies the outcome of one sync operation.
type Status string

const (
	// StatusSynced means the timestamp gate passed and updates were applied.
	StatusSynced Status = "synced"
	// StatusSkipped means every candidate record was newer than the
	// incoming update. Not an error.
	StatusSkipped Status = "skipped"
	// StatusNoMatch means no record references the incoming id.
	StatusNoMatch Status = "no_matching_records"
	// StatusNotConfigured means the target system is not configured.
	StatusNotConfigured Status = "not_configured"
	// StatusFailed means the sync was attempted and an update errored.
	StatusFailed Status = "failed"
)

// Result reports what a sync operation did, distinguishing "skipped" from
// "attempted and failed" from "succeeded" without string matching.
type Result struct {
	Status  Status `json:"status"`
	Updated int    `json:"updated"`
	Message string `json:"message,omitempty"`
}

// Coordinator moves updates between the two external systems.
type Coordinator struct {
	store datastore.Store
	crm   crm.Capability
}

// New creates a Coordinator. The CRM capability controls whether the
// store-to-CRM direction is available.
func New(store datastore.Store, crmCap crm.Capability) *Coordinator {
	return &Coordinator{store: store, crm: crmCap}
}

// ShouldSync reports whether an incoming update at the given instant should
// overwrite a record last updated at local. A nil local means no existing
// record, which always syncs. Equal instants do not sync.
func ShouldSync(local *time.Time, incoming time.Time) bool {
	if local == nil {
		return true
	}
	return incoming.After(*local)
}

// parseTime parses a stored timestamp, returning nil when the value is empty
// or unparseable so the caller falls back to "no local record" semantics.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// SyncCRMToStore applies a CRM account update to every datastore row that
// references the account as caregiver, gating each row on its own
// updated_at timestamp.
func (c *Coordinator) SyncCRMToStore(ctx context.Context, accountID string, acct crm.Account, incoming time.Time) Result {
	slog.Info("syncing CRM account to datastore", "accountId", accountID)

	if c.store == nil {
		slog.Info("datastore not configured, skipping sync", "accountId", accountID)
		return Result{Status: StatusNotConfigured}
	}

	recs, err := c.store.QueryByAccountID(ctx, datastore.RoleCaregiver, accountID)
	if err != nil {
		return Result{Status: StatusFailed, Message: err.Error()}
	}
	if len(recs) == 0 {
		slog.Info("no matching datastore records", "accountId", accountID)
		return Result{Status: StatusNoMatch}
	}

	updates := accountToRow(acct)

	updated := 0
	for _, rec := range recs {
		if !ShouldSync(parseTime(rec.UpdatedAt), incoming) {
			slog.Info("skipping sync, local record is newer", "id", rec.ID)
			continue
		}
		if _, err := c.store.UpdateSubmission(ctx, rec.ID, updates); err != nil {
			return Result{Status: StatusFailed, Updated: updated, Message: fmt.Sprintf("update record %d: %v", rec.ID, err)}
		}
		updated++
	}

	slog.Info("synced CRM account to datastore", "accountId", accountID, "updated", updated)
	if updated == 0 {
		return Result{Status: StatusSkipped}
	}
	return Result{Status: StatusSynced, Updated: updated}
}

// SyncStoreToCRM applies a datastore row update to the CRM account the row
// references. The account's own last-modified instant gates the update; an
// unknown instant counts as no local record and syncs.
func (c *Coordinator) SyncStoreToCRM(ctx context.Context, rec *datastore.SubmissionRecord, incoming time.Time) Result {
	slog.Info("syncing datastore record to CRM", "id", rec.ID)

	accountID := rec.NeonCaregiverID
	if accountID == "" {
		return Result{Status: StatusNoMatch, Message: "record has no CRM account id"}
	}
	if !c.crm.Enabled {
		slog.Info("CRM not configured, skipping sync", "id", rec.ID)
		return Result{Status: StatusNotConfigured}
	}

	var local *time.Time
	acct, err := c.crm.Client.GetAccount(ctx, accountID)
	if err != nil {
		slog.Warn("could not read CRM account timestamp, proceeding", "accountId", accountID, "error", err)
	} else if acct != nil {
		local = parseTime(acct.LastModified)
	}

	if !ShouldSync(local, incoming) {
		slog.Info("skipping sync, CRM account is newer", "accountId", accountID)
		return Result{Status: StatusSkipped}
	}

	if _, err := c.crm.Client.UpdateAccount(ctx, accountID, rowToIdentity(rec)); err != nil {
		return Result{Status: StatusFailed, Message: err.Error()}
	}

	slog.Info("synced datastore record to CRM", "id", rec.ID, "accountId", accountID)
	return Result{Status: StatusSynced, Updated: 1}
}
