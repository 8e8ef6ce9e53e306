package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.Repositories) == 0 || len(cfg.Mirrors) == 0 {
		t.Fatalf("expected built-in repositories and mirrors, got %+v", cfg)
	}
	if cfg.RetryBudget != 3 {
		t.Fatalf("expected default retry budget 3 got %d", cfg.RetryBudget)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("expected default timeout 30s got %v", cfg.RequestTimeout)
	}
	if cfg.Workers != 4 {
		t.Fatalf("expected default workers 4 got %d", cfg.Workers)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("RETRY_BUDGET", "5")
	t.Setenv("MIRRORS", "http://one.test/{repo}/{sha}/{path},http://two.test/{repo}/{sha}/{path}")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.RetryBudget != 5 {
		t.Fatalf("expected retry budget 5 got %d", cfg.RetryBudget)
	}
	if len(cfg.Mirrors) != 2 || cfg.Mirrors[0] != "http://one.test/{repo}/{sha}/{path}" {
		t.Fatalf("unexpected mirrors %v", cfg.Mirrors)
	}
}

func TestLoadConfigPatches(t *testing.T) {
	t.Setenv("CONFIG_PATCHES", `[{"op":"replace","path":"/repositories","value":["patched/repo"]}]`)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.Repositories) != 1 || cfg.Repositories[0] != "patched/repo" {
		t.Fatalf("unexpected repositories %v", cfg.Repositories)
	}
}

func TestLoadConfigBadPatch(t *testing.T) {
	t.Setenv("CONFIG_PATCHES", `not json`)

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected error for malformed config patch")
	}
}
