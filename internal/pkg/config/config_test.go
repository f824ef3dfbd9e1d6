package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Session.Cookie != "skillsphere_sid" || cfg.Session.ResolveWait != 2*time.Second || cfg.Session.Revalidate != time.Minute {
		t.Fatalf("unexpected session defaults: %+v", cfg.Session)
	}
	if cfg.EnrollmentCacheTTL != time.Minute || cfg.APITokenTTL != 5*time.Minute {
		t.Fatalf("unexpected ttl defaults: cache=%v api=%v", cfg.EnrollmentCacheTTL, cfg.APITokenTTL)
	}
	if cfg.IsProduction() {
		t.Fatalf("development must not be production")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      "secret",
		"ENV":             "production",
		"BACKEND_URL":     "https://api.skillsphere.dev",
		"RESOLVE_WORKERS": "3",
		"SESSION_TTL":     "1h",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsProduction() || cfg.Backend.URL != "https://api.skillsphere.dev" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ResolveWorkers != 3 || cfg.Session.TTL != time.Hour {
		t.Fatalf("overrides not applied: workers=%d ttl=%v", cfg.ResolveWorkers, cfg.Session.TTL)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected missing JWT_SECRET to fail")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
		"TOKEN_TTL":  "forever",
	}))
	if err == nil {
		t.Fatalf("expected invalid duration to fail")
	}
}
