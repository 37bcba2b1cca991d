package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CONTAINER_DIMS", "")
	t.Setenv("OPTIMIZER_WORKERS", "")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.Container.Length != defaultContainerLength || cfg.Container.MaxWeight != defaultMaxWeight {
		t.Fatalf("unexpected default container: %+v", cfg.Container)
	}
	if cfg.Optimizer.MaxOrderings != defaultMaxOrderings {
		t.Fatalf("unexpected default max orderings: %d", cfg.Optimizer.MaxOrderings)
	}
	if cfg.Optimizer.Timeout != defaultOptimizeTimeout {
		t.Fatalf("unexpected default optimize timeout: %s", cfg.Optimizer.Timeout)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CONTAINER_DIMS", "8.25x6.38x3.75")
	t.Setenv("OPTIMIZER_WORKERS", "4")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.Container.Length != 8.25 || cfg.Container.Width != 6.38 || cfg.Container.Height != 3.75 {
		t.Fatalf("unexpected container dims: %+v", cfg.Container)
	}
	if cfg.Container.MaxWeight != defaultMaxWeight {
		t.Fatalf("env dims must not clobber the weight capacity: %+v", cfg.Container)
	}
	if cfg.Optimizer.Workers != 4 {
		t.Fatalf("unexpected workers: %d", cfg.Optimizer.Workers)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CONTAINER_DIMS", "")
	t.Setenv("OPTIMIZER_WORKERS", "")

	content := `
port: "8090"
container:
  length: 10
  width: 9
  height: 8
  max_weight: 30
optimizer:
  workers: 2
  max_orderings: 16
  seed: 7
  allow_container_rotation: true
  timeout: 500ms
  weights:
    floor_contact: 2
    compactness: 0.5
items:
  - name: Product A
    length: 5
    width: 5
    height: 5
    quantity: 2
shutdown_grace_period: 3s
rate_limit:
  rps: 10
  burst: 20
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8090" {
		t.Fatalf("unexpected port %s", cfg.Port)
	}
	if cfg.Container != (Container{Length: 10, Width: 9, Height: 8, MaxWeight: 30}) {
		t.Fatalf("unexpected container %+v", cfg.Container)
	}
	if cfg.Optimizer.Workers != 2 || cfg.Optimizer.MaxOrderings != 16 || cfg.Optimizer.Seed != 7 {
		t.Fatalf("unexpected optimizer settings %+v", cfg.Optimizer)
	}
	if !cfg.Optimizer.AllowContainerRotation {
		t.Fatalf("expected container rotation enabled")
	}
	if cfg.Optimizer.Timeout != 500*time.Millisecond {
		t.Fatalf("unexpected optimize timeout %s", cfg.Optimizer.Timeout)
	}
	if cfg.Optimizer.Weights.FloorContact != 2 || cfg.Optimizer.Weights.Compactness != 0.5 {
		t.Fatalf("unexpected weights %+v", cfg.Optimizer.Weights)
	}
	if len(cfg.InitialItems) != 1 || cfg.InitialItems[0].Quantity != 2 {
		t.Fatalf("unexpected initial items %+v", cfg.InitialItems)
	}
	if cfg.ShutdownGracePeriod != 3*time.Second {
		t.Fatalf("unexpected grace period %s", cfg.ShutdownGracePeriod)
	}
	if cfg.RateLimitRPS != 10 || cfg.RateLimitBurst != 20 {
		t.Fatalf("unexpected rate limit %g/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadCLIOverridesWin(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CONTAINER_DIMS", "")
	t.Setenv("OPTIMIZER_WORKERS", "")

	port := "7777"
	container := "5x4x3"
	maxWeight := 0.0
	workers := 3

	cfg, err := Load(&CLIOverrides{
		Port:         &port,
		ContainerStr: &container,
		MaxWeight:    &maxWeight,
		Workers:      &workers,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "7777" {
		t.Fatalf("CLI port should win over env, got %s", cfg.Port)
	}
	if cfg.Container != (Container{Length: 5, Width: 4, Height: 3, MaxWeight: 0}) {
		t.Fatalf("unexpected container %+v", cfg.Container)
	}
	if cfg.Optimizer.Workers != 3 {
		t.Fatalf("unexpected workers %d", cfg.Optimizer.Workers)
	}
}

func TestLoadRejectsMissingConfigFile(t *testing.T) {
	if _, err := Load(&CLIOverrides{ConfigFile: "definitely-not-a-real-file.yaml"}); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestParseContainerDims(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := parseContainerDims("12x10X8.5")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != (Container{Length: 12, Width: 10, Height: 8.5}) {
			t.Fatalf("unexpected container %+v", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, raw := range []string{"", "12x10", "12x10x8x6", "axbxc", "12x-1x8", "12x0x8"} {
			if _, err := parseContainerDims(raw); err == nil {
				t.Fatalf("expected error for %q", raw)
			}
		}
	})
}

func TestValidateConfigRejectsDegenerateContainer(t *testing.T) {
	cfg := defaultConfig()
	cfg.Container.Height = 0

	if err := validateConfig(cfg); err == nil {
		t.Fatalf("expected error for zero container height")
	}
}
