package config

import (
	"testing"
	"time"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig err: %v", err)
	}
	if cfg.Addr != ":3001" {
		t.Fatalf("default addr = %q, want :3001", cfg.Addr)
	}
}

func TestLoadServerConfigForms(t *testing.T) {
	cases := map[string]string{
		"8080":           ":8080",
		":9000":          ":9000",
		"127.0.0.1:9000": "127.0.0.1:9000",
	}
	for in, want := range cases {
		t.Setenv("PORT", in)
		cfg, err := loadServerConfig()
		if err != nil {
			t.Fatalf("loadServerConfig(%q) err: %v", in, err)
		}
		if cfg.Addr != want {
			t.Fatalf("addr for %q = %q, want %q", in, cfg.Addr, want)
		}
	}
}

func TestLoadServerConfigRejectsGarbage(t *testing.T) {
	t.Setenv("PORT", "80 80")
	if _, err := loadServerConfig(); err == nil {
		t.Fatal("expected error for malformed PORT")
	}
}

func TestMatchConfigDefaults(t *testing.T) {
	cfg, err := loadMatchConfig()
	if err != nil {
		t.Fatalf("loadMatchConfig err: %v", err)
	}
	if cfg.AffinityWindow != 15*time.Second {
		t.Fatalf("affinity window = %v, want 15s", cfg.AffinityWindow)
	}
	if cfg.FallbackThreshold != 30*time.Second {
		t.Fatalf("fallback threshold = %v, want 30s", cfg.FallbackThreshold)
	}
	if cfg.StaleTimeout != 5*time.Minute {
		t.Fatalf("stale timeout = %v, want 5m", cfg.StaleTimeout)
	}
	if cfg.IdleTimeout != 3*time.Minute {
		t.Fatalf("idle timeout = %v, want 3m", cfg.IdleTimeout)
	}
	if cfg.PingMissLimit != 2 {
		t.Fatalf("ping miss limit = %d, want 2", cfg.PingMissLimit)
	}
	if cfg.MaxInterests != 5 {
		t.Fatalf("max interests = %d, want 5", cfg.MaxInterests)
	}
}

func TestMatchConfigOverrides(t *testing.T) {
	t.Setenv("MATCH_AFFINITY_WINDOW", "30s")
	t.Setenv("MATCH_IDLE_TIMEOUT", "10m")
	t.Setenv("MATCH_PING_MISS_LIMIT", "4")
	t.Setenv("MATCH_MAX_INTERESTS", "3")

	cfg, err := loadMatchConfig()
	if err != nil {
		t.Fatalf("loadMatchConfig err: %v", err)
	}
	if cfg.AffinityWindow != 30*time.Second {
		t.Fatalf("affinity window override = %v", cfg.AffinityWindow)
	}
	if cfg.IdleTimeout != 10*time.Minute {
		t.Fatalf("idle timeout override = %v", cfg.IdleTimeout)
	}
	if cfg.PingMissLimit != 4 {
		t.Fatalf("ping miss limit override = %d", cfg.PingMissLimit)
	}
	if cfg.MaxInterests != 3 {
		t.Fatalf("max interests override = %d", cfg.MaxInterests)
	}
}

func TestMatchConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("MATCH_AFFINITY_WINDOW", "soon")
	if _, err := loadMatchConfig(); err == nil {
		t.Fatal("expected error for unparseable duration")
	}

	t.Setenv("MATCH_AFFINITY_WINDOW", "-5s")
	if _, err := loadMatchConfig(); err == nil {
		t.Fatal("expected error for non-positive duration")
	}
}

func TestAIConfigEnabled(t *testing.T) {
	if (AIConfig{}).Enabled() {
		t.Fatal("empty config must be disabled")
	}
	if !(AIConfig{Model: "m", APIKey: "k"}).Enabled() {
		t.Fatal("model plus api key should enable the bridge")
	}
	if !(AIConfig{Model: "m", AccessKey: "a", SecretKey: "s"}).Enabled() {
		t.Fatal("model plus ak/sk pair should enable the bridge")
	}
	if (AIConfig{Model: "m"}).Enabled() {
		t.Fatal("model without credentials must stay disabled")
	}
}
