package datastore

// Capability bundles a Store with whether the datastore integration is
// enabled, constructed once at process start and passed down.
type Capability struct {
	Enabled bool
	Store   Store
}
