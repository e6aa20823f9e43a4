package crm

import (
	"context"
	"fmt"
	"log/slog"
)

// Resolver finds or creates the CRM account for a person. De-duplication is
// by exact email first, then by exact (firstName, lastName) pair.
//
// Known limitation: concurrent resolutions of the same identity race between
// search and create, so at-most-one-account-per-identity is best effort. The
// CRM is the system of record for merging the occasional duplicate.
type Resolver struct {
	client Client
}

// NewResolver creates a Resolver over the given CRM client.
func NewResolver(client Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve returns an existing account matching the identity, or creates one.
// Search failures are treated as "not found" so a transient search outage
// degrades to a possible duplicate rather than a failed resolution; only
// creation failures propagate.
func (r *Resolver) Resolve(ctx context.Context, identity Identity) (*Account, error) {
	if identity.Email != "" {
		acct, err := r.client.SearchAccountByEmail(ctx, identity.Email)
		if err != nil {
			slog.Warn("account search by email failed, continuing", "error", err)
		} else if acct != nil {
			slog.Info("found existing account by email", "accountId", acct.ID)
			return acct, nil
		}
	}

	acct, err := r.client.SearchAccountByName(ctx, identity.FirstName, identity.LastName)
	if err != nil {
		slog.Warn("account search by name failed, continuing", "error", err)
	} else if acct != nil {
		slog.Info("found existing account by name", "accountId", acct.ID)
		return acct, nil
	}

	created, err := r.client.CreateAccount(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("resolve %s %s: %w", identity.FirstName, identity.LastName, err)
	}
	slog.Info("created new account", "accountId", created.ID)
	return created, nil
}
