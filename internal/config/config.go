package config

import "os"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Addr      string // INTAKE_ADDR, default ":8080"
	DBPath    string // INTAKE_DB, default "intake.db"; empty disables the datastore
	BackupDir string // INTAKE_BACKUP_DIR, default "submissions"

	// Neon CRM credentials. Both org ID and API key must be set for the CRM
	// integration to be considered configured.
	NeonOrgID         string // NEON_ORG_ID
	NeonAPIKey        string // NEON_API_KEY
	NeonBaseURL       string // NEON_API_BASE_URL, default "https://api.neoncrm.com/v2"
	NeonBaseURLV1     string // NEON_API_BASE_URL_V1, default "https://api.neoncrm.com/neonws/services/api"
	NeonWebhookSecret string // NEON_WEBHOOK_SECRET, optional

	DatastoreWebhookSecret string // DATASTORE_WEBHOOK_SECRET, optional
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Addr:      envOr("INTAKE_ADDR", ":8080"),
		DBPath:    envOr("INTAKE_DB", "intake.db"),
		BackupDir: envOr("INTAKE_BACKUP_DIR", "submissions"),

		NeonOrgID:         os.Getenv("NEON_ORG_ID"),
		NeonAPIKey:        os.Getenv("NEON_API_KEY"),
		NeonBaseURL:       envOr("NEON_API_BASE_URL", "https://api.neoncrm.com/v2"),
		NeonBaseURLV1:     envOr("NEON_API_BASE_URL_V1", "https://api.neoncrm.com/neonws/services/api"),
		NeonWebhookSecret: os.Getenv("NEON_WEBHOOK_SECRET"),

		DatastoreWebhookSecret: os.Getenv("DATASTORE_WEBHOOK_SECRET"),
	}
}

// CRMConfigured reports whether the Neon CRM credentials are usable.
// Placeholder values copied from a .env template do not count.
func (c Config) CRMConfigured() bool {
	return c.NeonOrgID != "" && c.NeonAPIKey != "" &&
		c.NeonOrgID != "your_organization_id_here" &&
		c.NeonAPIKey != "your_api_key_here"
}

// DatastoreConfigured reports whether the local relational datastore is enabled.
func (c Config) DatastoreConfigured() bool {
	return c.DBPath != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
