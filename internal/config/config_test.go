package config

import (
	"errors"
	"testing"
	"time"
)

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "15m", want: 15 * time.Minute},
		{raw: "7d", want: 7 * 24 * time.Hour},
		{raw: "1h30m", want: 90 * time.Minute},
		{raw: "900", want: 900 * time.Second},
		{raw: "", wantErr: true},
		{raw: "0", wantErr: true},
		{raw: "-5m", wantErr: true},
		{raw: "xd", wantErr: true},
		{raw: "soon", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseExpiry(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error, got %v", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("%q: got %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingSecrets) {
		t.Fatalf("got %v, want ErrMissingSecrets", err)
	}
}

func TestLoad_DevelopmentUsesFallbackSecrets(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")
	t.Setenv("STORAGE", StorageMemory)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.UsingFallbackSecrets {
		t.Fatalf("expected fallback flag to be set")
	}
	if cfg.JWTSecret == cfg.JWTRefreshSecret {
		t.Fatalf("fallback access and refresh secrets must differ")
	}
	if cfg.JWTAccessTTL != 15*time.Minute || cfg.JWTRefreshTTL != 7*24*time.Hour {
		t.Fatalf("unexpected default ttls: %v %v", cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	}
}

func TestLoad_ConfiguredSecrets(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("JWT_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "b")
	t.Setenv("JWT_EXPIRES_IN", "5m")
	t.Setenv("STORAGE", StoragePostgres)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UsingFallbackSecrets {
		t.Fatalf("fallback flag must be false when secrets are configured")
	}
	if cfg.JWTAccessTTL != 5*time.Minute {
		t.Fatalf("got %v, want 5m", cfg.JWTAccessTTL)
	}
	if cfg.ExposeErrorDetail() {
		t.Fatalf("production must not expose error detail")
	}
}

func TestLoad_RejectsUnknownStorage(t *testing.T) {
	t.Setenv("APP_ENV", EnvTest)
	t.Setenv("STORAGE", "mongo")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown storage")
	}
}
