package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Storage.Driver != "file" {
		t.Errorf("driver = %q, want file", cfg.Storage.Driver)
	}
	if cfg.Dashboard.TrendDays != 7 {
		t.Errorf("trend days = %d, want 7", cfg.Dashboard.TrendDays)
	}
}

func TestStorageConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StorageConfig
		wantErr bool
	}{
		{"file with path", StorageConfig{Driver: "file", Path: "./data"}, false},
		{"file without path", StorageConfig{Driver: "file"}, true},
		{"sqlite with path", StorageConfig{Driver: "sqlite", Path: "moods.db"}, false},
		{"sqlite without path", StorageConfig{Driver: "sqlite"}, true},
		{"postgres with dsn", StorageConfig{Driver: "postgres", DSN: "postgres://localhost/moods"}, false},
		{"postgres without dsn", StorageConfig{Driver: "postgres"}, true},
		{"memory", StorageConfig{Driver: "memory"}, false},
		{"unknown driver", StorageConfig{Driver: "redis", Path: "x"}, true},
		{"empty driver", StorageConfig{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStorageConfig_Options(t *testing.T) {
	cfg := StorageConfig{Driver: "sqlite", Path: "moods.db", DSN: "unused"}
	opts := cfg.Options()
	if opts.Driver != "sqlite" || opts.Path != "moods.db" || opts.DSN != "unused" {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestDashboardConfig_RejectsZeroTrend(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Dashboard.TrendDays = 0
	// Zero is treated as "unset" by ozzo's Min rule.
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero trend days should pass: %v", err)
	}
	cfg.Dashboard.TrendDays = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative trend days should fail")
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	cfg := HTTPConfig{Port: 9090}
	if got := cfg.Address(); got != ":9090" {
		t.Errorf("Address() = %q, want :9090", got)
	}
}
