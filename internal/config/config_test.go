package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Input.Path != "" {
		t.Errorf("Input.Path = %q, want stdin (empty)", cfg.Input.Path)
	}
	if cfg.Report.Sort != "alpha" {
		t.Errorf("Report.Sort = %q, want alpha", cfg.Report.Sort)
	}
	if cfg.Report.Color {
		t.Error("Report.Color = true, want false")
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want warn/text", cfg.Logging)
	}
	if cfg.Storage.Type != StorageNone {
		t.Errorf("Storage.Type = %q, want none", cfg.Storage.Type)
	}
	if cfg.Storage.Redis.HistoryLimit != 100 {
		t.Errorf("Storage.Redis.HistoryLimit = %d, want 100", cfg.Storage.Redis.HistoryLimit)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, "mstat.yaml", `
input:
  path: /var/log/lmstat.txt
report:
  sort: time
  color: true
metrics:
  textfile: /var/lib/node_exporter/mstat.prom
storage:
  type: redis
  redis:
    host: redis.internal
    history_limit: 10
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Input.Path != "/var/log/lmstat.txt" {
		t.Errorf("Input.Path = %q", cfg.Input.Path)
	}
	if cfg.Report.Sort != "time" || !cfg.Report.Color {
		t.Errorf("Report = %+v", cfg.Report)
	}
	if cfg.Metrics.Textfile != "/var/lib/node_exporter/mstat.prom" {
		t.Errorf("Metrics.Textfile = %q", cfg.Metrics.Textfile)
	}
	if cfg.Storage.Type != StorageRedis || cfg.Storage.Redis.Host != "redis.internal" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	// Untouched keys keep their defaults.
	if cfg.Storage.Redis.Port != 6379 {
		t.Errorf("Storage.Redis.Port = %d, want 6379", cfg.Storage.Redis.Port)
	}
	if cfg.Storage.Redis.HistoryLimit != 10 {
		t.Errorf("Storage.Redis.HistoryLimit = %d, want 10", cfg.Storage.Redis.HistoryLimit)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MSTAT_REPORT_SORT", "time")
	t.Setenv("MSTAT_LOGGING_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Report.Sort != "time" {
		t.Errorf("Report.Sort = %q, want time", cfg.Report.Sort)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"sort", "report:\n  sort: size\n", "invalid report sort"},
		{"level", "logging:\n  level: loud\n", "invalid logging level"},
		{"format", "logging:\n  format: xml\n", "invalid logging format"},
		{"storage", "storage:\n  type: bolt\n", "invalid storage type"},
		{"timeout", "storage:\n  type: redis\n  redis:\n    timeout: soon\n", "storage.redis.timeout"},
		{"history", "storage:\n  type: redis\n  redis:\n    history_limit: 0\n", "history_limit"},
		{"syntax", "report: [\n", "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "mstat.yaml", tt.body))
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestUnknownKeys(t *testing.T) {
	path := writeConfig(t, "mstat.yaml", `
report:
  sort: time
  colour: true
storage:
  redis:
    hostname: localhost
`)

	unknown, err := UnknownKeys(path)
	if err != nil {
		t.Fatalf("UnknownKeys() error = %v", err)
	}

	want := []string{"report.colour", "storage.redis.hostname"}
	if strings.Join(unknown, ",") != strings.Join(want, ",") {
		t.Errorf("UnknownKeys() = %v, want %v", unknown, want)
	}
}

func TestKnownKeys_MatchDefaults(t *testing.T) {
	keys := KnownKeys()
	if len(keys) != len(defaults) {
		t.Fatalf("KnownKeys() returned %d keys, want %d", len(keys), len(defaults))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Errorf("KnownKeys() not sorted at %d: %q >= %q", i, keys[i-1], keys[i])
		}
	}
}
