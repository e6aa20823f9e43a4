package crm

import "context"

// Account is the CRM's identity record for one person. The intake service
// only ever holds the reference ID after resolution; the CRM owns the rest.
type Account struct {
	ID        string   `json:"accountId"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Address   *Address `json:"address,omitempty"`

	// LastModified is the CRM-side update instant in RFC 3339 form, when the
	// CRM reports one. Empty means unknown.
	LastModified string `json:"lastModified,omitempty"`
}

// Address is a postal address attached to an account.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
	County string `json:"county,omitempty"`
}

// Identity holds the attributes used to find or create an account.
type Identity struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	DOB       string
	Gender    string
	Street    string
	City      string
	State     string
	Zip       string
	County    string
}

// HasFullAddress reports whether all four core address parts are present.
// Partial addresses are never sent to the CRM.
func (id Identity) HasFullAddress() bool {
	return id.Street != "" && id.City != "" && id.State != "" && id.Zip != ""
}

// Client is the CRM service consumed by the rest of the application.
// Implementations return (nil, nil) from searches when no account matches.
type Client interface {
	SearchAccountByEmail(ctx context.Context, email string) (*Account, error)
	SearchAccountByName(ctx context.Context, firstName, lastName string) (*Account, error)
	GetAccount(ctx context.Context, id string) (*Account, error)
	CreateAccount(ctx context.Context, identity Identity) (*Account, error)
	UpdateAccount(ctx context.Context, id string, identity Identity) (*Account, error)
	CreateCustomRecord(ctx context.Context, objectName string, fields map[string]any) (string, error)
}
