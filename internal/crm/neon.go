package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// requestTimeout bounds every outbound CRM call. A timed-out call surfaces
// as an ordinary error and degrades per the caller's policy.
const requestTimeout = 10 * time.Second

// NeonClient talks to the Neon CRM API. Account operations use API v2
// (basic-auth JSON); custom object records use API v1, which needs a
// session login and form-encoded requests.
type NeonClient struct {
	orgID     string
	apiKey    string
	baseURL   string
	baseURLv1 string
	http      *http.Client

	mu        sync.Mutex
	sessionID string
}

// NeonOption configures a NeonClient.
type NeonOption func(*NeonClient)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) NeonOption {
	return func(n *NeonClient) { n.http = c }
}

// NewNeonClient creates a Neon CRM client.
func NewNeonClient(orgID, apiKey, baseURL, baseURLv1 string, opts ...NeonOption) *NeonClient {
	n := &NeonClient{
		orgID:     orgID,
		apiKey:    apiKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		baseURLv1: strings.TrimSuffix(baseURLv1, "/"),
		http:      &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// wireAccount is the account shape returned by Neon API v2.
type wireAccount struct {
	AccountID string `json:"accountId"`
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Addresses []struct {
		AddressLine1 string `json:"addressLine1"`
		City         string `json:"city"`
		StateProvince struct {
			Code string `json:"code"`
		} `json:"stateProvince"`
		ZipCode string `json:"zipCode"`
		County  string `json:"county"`
	} `json:"addresses"`
	LastModifiedDate string `json:"lastModifiedDate"`
}

func (w *wireAccount) toAccount() *Account {
	acct := &Account{
		ID:           w.AccountID,
		FirstName:    w.FirstName,
		LastName:     w.LastName,
		Email:        w.Email,
		Phone:        w.Phone,
		LastModified: w.LastModifiedDate,
	}
	if acct.ID == "" {
		acct.ID = w.ID
	}
	if len(w.Addresses) > 0 {
		a := w.Addresses[0]
		acct.Address = &Address{
			Street: a.AddressLine1,
			City:   a.City,
			State:  a.StateProvince.Code,
			Zip:    a.ZipCode,
			County: a.County,
		}
	}
	return acct
}

// SearchAccountByEmail looks up an individual account by exact email match.
// Returns (nil, nil) when no account matches.
func (n *NeonClient) SearchAccountByEmail(ctx context.Context, email string) (*Account, error) {
	if email == "" {
		return nil, nil
	}
	q := url.Values{"userType": {"INDIVIDUAL"}, "email": {email}}
	return n.searchAccounts(ctx, q)
}

// SearchAccountByName looks up an individual account by exact first/last
// name pair. Returns (nil, nil) when no account matches.
func (n *NeonClient) SearchAccountByName(ctx context.Context, firstName, lastName string) (*Account, error) {
	if firstName == "" || lastName == "" {
		return nil, nil
	}
	q := url.Values{"userType": {"INDIVIDUAL"}, "firstName": {firstName}, "lastName": {lastName}}
	return n.searchAccounts(ctx, q)
}

func (n *NeonClient) searchAccounts(ctx context.Context, q url.Values) (*Account, error) {
	var body struct {
		Accounts []wireAccount `json:"accounts"`
	}
	if err := n.doV2(ctx, http.MethodGet, "/accounts?"+q.Encode(), nil, &body); err != nil {
		return nil, err
	}
	if len(body.Accounts) == 0 {
		return nil, nil
	}
	return body.Accounts[0].toAccount(), nil
}

// GetAccount fetches a single account by ID.
func (n *NeonClient) GetAccount(ctx context.Context, id string) (*Account, error) {
	var body struct {
		IndividualAccount *struct {
			AccountID      string `json:"accountId"`
			PrimaryContact wireAccount `json:"primaryContact"`
			Timestamps     struct {
				LastModifiedDateTime string `json:"lastModifiedDateTime"`
			} `json:"timestamps"`
		} `json:"individualAccount"`
	}
	if err := n.doV2(ctx, http.MethodGet, "/accounts/"+url.PathEscape(id), nil, &body); err != nil {
		return nil, err
	}
	if body.IndividualAccount == nil {
		return nil, nil
	}
	acct := body.IndividualAccount.PrimaryContact.toAccount()
	if body.IndividualAccount.AccountID != "" {
		acct.ID = body.IndividualAccount.AccountID
	}
	if ts := body.IndividualAccount.Timestamps.LastModifiedDateTime; ts != "" {
		acct.LastModified = ts
	}
	return acct, nil
}

// accountPayload builds the individualAccount request body from an identity.
// The address sub-object is only included when all four core parts are set.
func accountPayload(identity Identity) map[string]any {
	contact := map[string]any{
		"firstName": identity.FirstName,
		"lastName":  identity.LastName,
	}
	if identity.Email != "" {
		contact["email1"] = identity.Email
	}
	if identity.Phone != "" {
		contact["phone1"] = identity.Phone
	}
	if identity.DOB != "" {
		contact["dob"] = identity.DOB
	}
	if identity.Gender != "" {
		contact["gender"] = map[string]any{"name": identity.Gender}
	}
	if identity.HasFullAddress() {
		contact["addresses"] = []map[string]any{{
			"addressLine1":     identity.Street,
			"city":             identity.City,
			"stateProvince":    map[string]any{"code": identity.State},
			"zipCode":          identity.Zip,
			"county":           identity.County,
			"isPrimaryAddress": true,
		}}
	}
	return map[string]any{
		"individualAccount": map[string]any{
			"primaryContact": contact,
		},
	}
}

// CreateAccount creates a new individual account.
func (n *NeonClient) CreateAccount(ctx context.Context, identity Identity) (*Account, error) {
	var created wireAccount
	if err := n.doV2(ctx, http.MethodPost, "/accounts", accountPayload(identity), &created); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	acct := created.toAccount()
	if acct.FirstName == "" {
		acct.FirstName = identity.FirstName
		acct.LastName = identity.LastName
	}
	return acct, nil
}

// UpdateAccount patches an existing individual account with the non-empty
// identity fields.
func (n *NeonClient) UpdateAccount(ctx context.Context, id string, identity Identity) (*Account, error) {
	var updated wireAccount
	if err := n.doV2(ctx, http.MethodPatch, "/accounts/"+url.PathEscape(id), accountPayload(identity), &updated); err != nil {
		return nil, fmt.Errorf("update account %s: %w", id, err)
	}
	acct := updated.toAccount()
	if acct.ID == "" {
		acct.ID = id
	}
	return acct, nil
}

func (n *NeonClient) doV2(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, n.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(n.orgID, n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// loginV1 obtains an API v1 session ID, caching it for subsequent custom
// object requests.
func (n *NeonClient) loginV1(ctx context.Context) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.sessionID != "" {
		return n.sessionID, nil
	}

	q := url.Values{
		"login.apiKey": {n.apiKey},
		"login.orgid":  {n.orgID},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURLv1+"/common/login?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("api v1 login: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		LoginResponse struct {
			OperationResult string `json:"operationResult"`
			UserSessionID   string `json:"userSessionId"`
		} `json:"loginResponse"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if body.LoginResponse.OperationResult != "SUCCESS" || body.LoginResponse.UserSessionID == "" {
		return "", fmt.Errorf("api v1 login failed: %s", body.LoginResponse.OperationResult)
	}

	n.sessionID = body.LoginResponse.UserSessionID
	slog.Info("neon api v1 login successful")
	return n.sessionID, nil
}

// CreateCustomRecord creates a custom object record via API v1. Fields with
// empty values are omitted. Returns the new record's ID.
func (n *NeonClient) CreateCustomRecord(ctx context.Context, objectName string, fields map[string]any) (string, error) {
	sessionID, err := n.loginV1(ctx)
	if err != nil {
		return "", err
	}

	// API v1 takes repeated name/value parameter pairs. POSTing the form
	// body avoids URL length limits.
	params := url.Values{}
	params.Set("userSessionId", sessionID)
	params.Set("customObjectRecord.objectApiName", objectName)
	for name, value := range fields {
		if value == nil {
			continue
		}
		s := fmt.Sprintf("%v", value)
		if s == "" {
			continue
		}
		params.Add("customObjectRecord.customObjectRecordDataList.customObjectRecordData.name", name)
		params.Add("customObjectRecord.customObjectRecordDataList.customObjectRecordData.value", s)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.baseURLv1+"/customObjectRecord/createCustomObjectRecord",
		strings.NewReader(params.Encode()))
	if err != nil {
		return "", fmt.Errorf("build custom record request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("create custom record: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		CreateCustomObjectRecordResponse struct {
			OperationResult    string `json:"operationResult"`
			CustomObjectRecord struct {
				ID       string `json:"id"`
				RecordID string `json:"recordId"`
			} `json:"customObjectRecord"`
			Errors json.RawMessage `json:"errors"`
		} `json:"createCustomObjectRecordResponse"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode custom record response: %w", err)
	}

	r := body.CreateCustomObjectRecordResponse
	if r.OperationResult != "SUCCESS" {
		return "", fmt.Errorf("create custom record failed: %s", string(r.Errors))
	}
	if r.CustomObjectRecord.ID != "" {
		return r.CustomObjectRecord.ID, nil
	}
	return r.CustomObjectRecord.RecordID, nil
}
