package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(cfg.Log.File, home) {
		t.Fatalf("Log.File = %q, want it under HOME %q", cfg.Log.File, home)
	}
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeFile(t, "config.yaml", `
elements: ["  alpha ", beta]
cache:
  keys: [a, b]
  initial: a
  endpoint: http://127.0.0.1:8080
  timeout: 250ms
  initial_fetch: true
log:
  level: DEBUG
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	want.Elements = []string{"alpha", "beta"}
	want.Cache = CacheConfig{
		Keys:         []string{"a", "b"},
		Initial:      "a",
		Endpoint:     "http://127.0.0.1:8080",
		Timeout:      250 * time.Millisecond,
		InitialFetch: true,
	}
	want.Log.Level = "debug"
	want.Log.Format = "json"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoad_TOML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeFile(t, "config.toml", `
elements = ["x"]

[cache]
keys = ["k1", "k2"]
timeout = "2s"

[log]
file = "~/logs/demo.log"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"k1", "k2"}, cfg.Cache.Keys); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}
	if cfg.Cache.Initial != "1" {
		t.Fatalf("Cache.Initial = %q, want default %q", cfg.Cache.Initial, "1")
	}
	if cfg.Cache.Timeout != 2*time.Second {
		t.Fatalf("Cache.Timeout = %s, want 2s", cfg.Cache.Timeout)
	}
	if cfg.Log.File != filepath.Join(home, "logs", "demo.log") {
		t.Fatalf("Log.File = %q, want it expanded under HOME", cfg.Log.File)
	}
	if cfg.Log.Level != defaultLogLevel {
		t.Fatalf("Log.Level = %q, want %q", cfg.Log.Level, defaultLogLevel)
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeFile(t, "config.yml", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cases := []struct {
		name string
		file string
		body string
		want error
	}{
		{"unsupported", "config.json", `{}`, ErrUnsupportedFormat},
		{"bad timeout", "config.yaml", "cache:\n  timeout: soon\n", ErrInvalid},
		{"bad level", "config.toml", "[log]\nlevel = \"loud\"\n", ErrInvalid},
		{"bad format", "config.yaml", "log:\n  format: xml\n", ErrInvalid},
		{"negative timeout", "config.yaml", "cache:\n  timeout: -1s\n", ErrInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.file, tc.body))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_UnknownFieldsRejected(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, tc := range []struct{ file, body string }{
		{"config.yaml", "colour: blue\n"},
		{"config.toml", "colour = \"blue\"\n"},
	} {
		if _, err := Load(writeFile(t, tc.file, tc.body)); err == nil {
			t.Fatalf("expected error for unknown field in %s", tc.file)
		}
	}
}

func TestMerge_KeepsBaseForZeroFields(t *testing.T) {
	base := Default()
	got := Merge(base, Config{Cache: CacheConfig{Endpoint: "http://remote"}})
	if got.Cache.Endpoint != "http://remote" {
		t.Fatalf("Cache.Endpoint = %q, want override", got.Cache.Endpoint)
	}
	if diff := cmp.Diff(base.Cache.Keys, got.Cache.Keys); diff != "" {
		t.Fatalf("expected base keys kept (-want +got):\n%s", diff)
	}
	got.Cache.Keys[0] = "mutated"
	if base.Cache.Keys[0] == "mutated" {
		t.Fatalf("expected merge result not to share slices with base")
	}
}

func TestExpandPath_Empty(t *testing.T) {
	if _, err := expandPath("   "); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}
