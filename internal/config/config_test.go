package config_test

import (
	"testing"

	"github.com/lotcarolinas/intake/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	// Unset any env vars that might be set.
	t.Setenv("INTAKE_ADDR", "")
	t.Setenv("INTAKE_DB", "")
	t.Setenv("INTAKE_BACKUP_DIR", "")
	t.Setenv("NEON_ORG_ID", "")
	t.Setenv("NEON_API_KEY", "")
	t.Setenv("NEON_API_BASE_URL", "")

	cfg := config.Load()

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":8080")
	}
	if cfg.DBPath != "intake.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "intake.db")
	}
	if cfg.BackupDir != "submissions" {
		t.Errorf("BackupDir = %q, want %q", cfg.BackupDir, "submissions")
	}
	if cfg.NeonBaseURL != "https://api.neoncrm.com/v2" {
		t.Errorf("NeonBaseURL = %q, want default v2 endpoint", cfg.NeonBaseURL)
	}
	if cfg.CRMConfigured() {
		t.Error("CRMConfigured() = true with no credentials")
	}
	if !cfg.DatastoreConfigured() {
		t.Error("DatastoreConfigured() = false with default DB path")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INTAKE_ADDR", ":9090")
	t.Setenv("INTAKE_DB", "/tmp/test.db")
	t.Setenv("NEON_ORG_ID", "org123")
	t.Setenv("NEON_API_KEY", "key456")

	cfg := config.Load()

	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":9090")
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/tmp/test.db")
	}
	if !cfg.CRMConfigured() {
		t.Error("CRMConfigured() = false with credentials set")
	}
}

func TestCRMConfiguredRejectsPlaceholders(t *testing.T) {
	t.Setenv("NEON_ORG_ID", "your_organization_id_here")
	t.Setenv("NEON_API_KEY", "your_api_key_here")

	if config.Load().CRMConfigured() {
		t.Error("CRMConfigured() = true with .env template placeholders")
	}
}

func TestDatastoreDisabledWithEmptyPath(t *testing.T) {
	t.Setenv("INTAKE_DB", "")

	// A deliberately blank INTAKE_DB falls back to the default path, so the
	// datastore is only disabled when the config is constructed directly.
	cfg := config.Config{DBPath: ""}
	if cfg.DatastoreConfigured() {
		t.Error("DatastoreConfigured() = true with empty DBPath")
	}
}
