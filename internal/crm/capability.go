package crm

// Capability bundles a CRM client with whether the integration is
// configured, constructed once at process start and passed down. Callers
// branch on Enabled instead of re-checking configuration ad hoc.
type Capability struct {
	Enabled bool
	Client  Client
}
