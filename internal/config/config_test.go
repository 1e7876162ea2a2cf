package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestLoadOrBootstrap_FirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadOrBootstrap(path)
	if cfg != nil {
		t.Fatalf("expected no config on first run, got %+v", cfg)
	}
	var bootstrap *BootstrapError
	if !errors.As(err, &bootstrap) {
		t.Fatalf("expected BootstrapError, got %v", err)
	}
	if bootstrap.Path != path {
		t.Fatalf("BootstrapError path = %q, want %q", bootstrap.Path, path)
	}

	// The written file must be fully populated.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	var written Config
	if err := yaml.Unmarshal(data, &written); err != nil {
		t.Fatalf("default config does not parse: %v", err)
	}
	if written.Endpoint == "" || written.APIKey == "" || written.Model == "" || written.SystemPrompt == "" {
		t.Fatalf("default config has empty fields: %+v", written)
	}
	if written.MaxTokens <= 0 || written.TimeoutSeconds <= 0 {
		t.Fatalf("default config has non-positive limits: %+v", written)
	}
	if written.APIKey != PlaceholderAPIKey {
		t.Fatalf("default api_key = %q, want placeholder", written.APIKey)
	}
}

func TestLoadOrBootstrap_PlaceholderKeyStillBootstraps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if _, err := LoadOrBootstrap(path); err == nil {
		t.Fatal("expected bootstrap error on first call")
	}
	// Second run without editing the file: still setup, not a hard failure.
	_, err := LoadOrBootstrap(path)
	var bootstrap *BootstrapError
	if !errors.As(err, &bootstrap) {
		t.Fatalf("expected BootstrapError on unedited config, got %v", err)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFile_ValidWithDefaults(t *testing.T) {
	path := writeConfig(t, `
endpoint: "https://llm.example.com"
api_key: "secret123"
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Endpoint != "https://llm.example.com" {
		t.Fatalf("endpoint = %q", cfg.Endpoint)
	}
	if cfg.APIKey != "secret123" {
		t.Fatalf("api_key = %q", cfg.APIKey)
	}
	// Omitted fields fall back to built-in defaults.
	if cfg.Model == "" || cfg.SystemPrompt == "" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.MaxTokens != 1024 {
		t.Fatalf("max_tokens default = %d, want 1024", cfg.MaxTokens)
	}
	if cfg.Timeout() != 60*time.Second {
		t.Fatalf("timeout default = %v, want 60s", cfg.Timeout())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var bootstrap *BootstrapError
	if errors.As(err, &bootstrap) {
		t.Fatalf("explicit missing path must not bootstrap, got %v", err)
	}
}

func TestLoadFile_BadYAML(t *testing.T) {
	path := writeConfig(t, "endpoint: [unclosed")
	_, err := LoadFile(path)
	var invalid *InvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidError, got %v", err)
	}
}

func TestLoadFile_InvalidEndpoint(t *testing.T) {
	cases := []struct {
		name     string
		endpoint string
	}{
		{"scheme", `endpoint: "ftp://example.com"`},
		{"no host", `endpoint: "https://"`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeConfig(t, c.endpoint+"\napi_key: \"k\"\n")
			_, err := LoadFile(path)
			var invalid *InvalidError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidError, got %v", err)
			}
			if invalid.Field != "endpoint" {
				t.Fatalf("field = %q, want endpoint", invalid.Field)
			}
		})
	}
}

func TestLoadFile_EnvOverridesBeatFile(t *testing.T) {
	path := writeConfig(t, `
endpoint: "https://file.example.com"
api_key: "filekey"
model: "file-model"
`)

	t.Setenv(EnvEndpoint, "https://env.example.com")
	t.Setenv(EnvAPIKey, "envkey")
	t.Setenv(EnvModel, "env-model")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Endpoint != "https://env.example.com" {
		t.Fatalf("endpoint = %q, env must win", cfg.Endpoint)
	}
	if cfg.APIKey != "envkey" {
		t.Fatalf("api_key = %q, env must win", cfg.APIKey)
	}
	if cfg.Model != "env-model" {
		t.Fatalf("model = %q, env must win", cfg.Model)
	}
}

func TestLoadFile_ExpandsEnvInBody(t *testing.T) {
	t.Setenv("CLIPPY_TEST_TOKEN", "expanded-secret")
	path := writeConfig(t, `
endpoint: "https://llm.example.com"
api_key: "${CLIPPY_TEST_TOKEN}"
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.APIKey != "expanded-secret" {
		t.Fatalf("api_key = %q, want expanded env value", cfg.APIKey)
	}
}

func TestDefaultConfigFile_MentionsOverrides(t *testing.T) {
	// The generated header documents the precedence order for users.
	for _, name := range []string{EnvEndpoint, EnvAPIKey, EnvModel} {
		if !strings.Contains(defaultConfigFile, name) {
			t.Fatalf("default config header missing %s", name)
		}
	}
}
