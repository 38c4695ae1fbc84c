package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid sqlite backend config",
			config: Config{
				Port:           "8081",
				DataBackend:    "sqlite",
				SQLiteDBPath:   "./test.db",
				InsightTimeout: 30 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "valid memory backend config",
			config: Config{
				Port:           "8081",
				DataBackend:    "memory",
				InsightTimeout: 30 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:           "abc",
				DataBackend:    "sqlite",
				SQLiteDBPath:   "./test.db",
				InsightTimeout: 30 * time.Second,
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range",
			config: Config{
				Port:           "70000",
				DataBackend:    "sqlite",
				SQLiteDBPath:   "./test.db",
				InsightTimeout: 30 * time.Second,
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "invalid backend",
			config: Config{
				Port:           "8081",
				DataBackend:    "sheets",
				InsightTimeout: 30 * time.Second,
			},
			wantErr:     true,
			errorString: "invalid data backend 'sheets'",
		},
		{
			name: "empty sqlite path with sqlite backend",
			config: Config{
				Port:           "8081",
				DataBackend:    "sqlite",
				SQLiteDBPath:   "",
				InsightTimeout: 30 * time.Second,
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name: "insight timeout too short",
			config: Config{
				Port:           "8081",
				DataBackend:    "memory",
				InsightTimeout: 100 * time.Millisecond,
			},
			wantErr:     true,
			errorString: "must be at least 1 second",
		},
		{
			name: "insight timeout too long",
			config: Config{
				Port:           "8081",
				DataBackend:    "memory",
				InsightTimeout: time.Hour,
			},
			wantErr:     true,
			errorString: "must be at most 5 minutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errorString) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.errorString)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "GEMINI_MODEL", "INSIGHT_TIMEOUT"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("default port=%s", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Fatalf("default backend=%s", cfg.DataBackend)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Fatalf("default model=%s", cfg.GeminiModel)
	}
	if cfg.InsightTimeout != 30*time.Second {
		t.Fatalf("default insight timeout=%v", cfg.InsightTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("INSIGHT_TIMEOUT", "45s")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("port=%s want 9000", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Fatalf("backend=%s want memory", cfg.DataBackend)
	}
	if cfg.InsightTimeout != 45*time.Second {
		t.Fatalf("insight timeout=%v want 45s", cfg.InsightTimeout)
	}
}
