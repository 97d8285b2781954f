package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.DBPath != "appliancetrack.db" {
		t.Errorf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APPLIANCETRACK_DB", "/tmp/other.db")
	t.Setenv("APPLIANCETRACK_ADDR", ":9090")

	cfg := Load()
	if cfg.DBPath != "/tmp/other.db" {
		t.Errorf("expected env db path, got %q", cfg.DBPath)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("expected env addr, got %q", cfg.Addr)
	}
}
