package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	o := &Options{Address: "localhost:8080", SweepEveryMinutes: 60, RetentionDays: 15, LogLevel: "info"}
	err := applyEnv(o, env(map[string]string{
		"SERVER_ADDRESS":         ":9000",
		"JWT_SECRET":             "s3cret",
		"ADMIN_TOKEN":            "ops",
		"SWEEP_INTERVAL_MINUTES": "0",
		"LOG_LEVEL":              "",
	}))
	if err != nil {
		t.Fatalf("applyEnv returned error: %v", err)
	}
	if o.Address != ":9000" || o.JWTSecret != "s3cret" || o.AdminToken != "ops" {
		t.Errorf("string overrides not applied: %+v", o)
	}
	if o.SweepEveryMinutes != 0 || o.SweepInterval() != 0 {
		t.Errorf("SweepEveryMinutes = %d; want 0", o.SweepEveryMinutes)
	}
	if o.LogLevel != "info" {
		t.Errorf("empty LOG_LEVEL should not override, got %q", o.LogLevel)
	}
	if o.RetentionWindow() != 15*24*time.Hour {
		t.Errorf("RetentionWindow = %v", o.RetentionWindow())
	}
}

func TestApplyEnv_BadInt(t *testing.T) {
	o := &Options{}
	if err := applyEnv(o, env(map[string]string{"RETENTION_DAYS": "two weeks"})); err == nil {
		t.Fatal("expected error for non-numeric RETENTION_DAYS")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"database_dsn":"postgres://x","retention_days":30,"tls_cert":"c.pem","tls_key":"k.pem"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	o := &Options{Address: "localhost:8080", RetentionDays: 15}
	if err := loadFile(o, path); err != nil {
		t.Fatalf("loadFile returned error: %v", err)
	}
	if o.DatabaseDSN != "postgres://x" || o.RetentionDays != 30 {
		t.Errorf("file values not applied: %+v", o)
	}
	if o.Address != "localhost:8080" {
		t.Errorf("absent keys must keep flag values, got %q", o.Address)
	}
	if !o.TLSEnabled() {
		t.Error("expected TLS to be enabled")
	}

	if err := loadFile(o, filepath.Join(dir, "missing.json")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{`), 0o600)
	if err := loadFile(o, bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		o       Options
		wantErr bool
	}{
		{"ok", Options{JWTSecret: "s", RetentionDays: 15, SweepEveryMinutes: 60}, false},
		{"sweeper disabled", Options{JWTSecret: "s", RetentionDays: 15}, false},
		{"no secret", Options{RetentionDays: 15}, true},
		{"negative sweep", Options{JWTSecret: "s", RetentionDays: 15, SweepEveryMinutes: -1}, true},
		{"zero retention", Options{JWTSecret: "s"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.o.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}
