package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appDirName     = "clippy-clippy"
	configFileName = "config.yaml"

	// PlaceholderAPIKey is written on bootstrap and must be replaced by the
	// user before a request can be attempted.
	PlaceholderAPIKey = "YOUR_API_TOKEN_HERE" // #nosec G101 - placeholder, not a credential

	defaultEndpoint     = "https://api.openai.com"
	defaultModel        = "gpt-4-vision-preview"
	defaultMaxTokens    = 1024
	defaultTimeoutSecs  = 60
	defaultSystemPrompt = "You are an OCR assistant. Transcribe the text visible in the provided image verbatim. Preserve the reading order. Output only the transcription, with no commentary."
)

// Environment overrides. Precedence: environment > file value > built-in default.
const (
	EnvEndpoint = "CLIPPY_ENDPOINT"
	EnvAPIKey   = "CLIPPY_API_KEY" // #nosec G101 - variable name, not a credential
	EnvModel    = "CLIPPY_MODEL"
)

// Config holds everything one invocation needs to reach the vision API.
// It is resolved once per run and threaded through the pipeline by value.
type Config struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	SystemPrompt   string `yaml:"system_prompt"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the HTTP request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BootstrapError signals first-run setup: a default config file was written
// (or the existing one still carries the placeholder key) and the user must
// edit it before a transcription can be attempted.
type BootstrapError struct {
	Path string
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("configuration at %s must be filled in before first use", e.Path)
}

// InvalidError reports a config file that exists but cannot be used. Field
// names the offending entry when it is known.
type InvalidError struct {
	Path  string
	Field string
	Err   error
}

func (e *InvalidError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration %s: field %q: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("invalid configuration %s: %v", e.Path, e.Err)
}

func (e *InvalidError) Unwrap() error { return e.Err }

// DefaultPath returns the well-known user-scoped config file location,
// creating the parent directory if necessary.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return filepath.Join(dir, configFileName), nil
}

// Resolve loads the configuration for this invocation. With an explicit path
// (the --config flag) the file must already exist; with the default path a
// missing file triggers the first-run bootstrap.
func Resolve(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return LoadFile(explicitPath)
	}
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadOrBootstrap(path)
}

// LoadOrBootstrap loads the config at path, writing a fully-populated
// default file and returning *BootstrapError when none exists yet.
func LoadOrBootstrap(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte(defaultConfigFile), 0o600); err != nil {
			return nil, fmt.Errorf("write default config to %s: %w", path, err)
		}
		return nil, &BootstrapError{Path: path}
	}
	return LoadFile(path)
}

// LoadFile parses an existing config file. A file that exists but cannot be
// parsed is a hard error, never a silent fallback to defaults - that would
// mask user edits.
func LoadFile(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) // #nosec G304 - reading the user's own config file is expected
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	// Expand environment variables in the file body, so values like
	// api_key: ${MY_TOKEN} stay out of plain text on disk.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, &InvalidError{Path: cleanPath, Err: err}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg, cleanPath); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(cfg.APIKey)
	if key == "" || key == PlaceholderAPIKey {
		return nil, &BootstrapError{Path: cleanPath}
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaultTimeoutSecs
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.Model = v
	}
}

func validate(cfg *Config, path string) error {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return &InvalidError{Path: path, Field: "endpoint", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &InvalidError{Path: path, Field: "endpoint", Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return &InvalidError{Path: path, Field: "endpoint", Err: errors.New("missing host")}
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return &InvalidError{Path: path, Field: "model", Err: errors.New("must not be empty")}
	}
	return nil
}

const defaultConfigFile = `# Configuration for clippy-clippy
# Point endpoint at any OpenAI-compatible provider and fill in your API key.
#
# Environment overrides: ` + EnvEndpoint + `, ` + EnvAPIKey + `, ` + EnvModel + `
# (environment beats file values, file values beat built-in defaults).
endpoint: "` + defaultEndpoint + `"
api_key: "` + PlaceholderAPIKey + `"

# Model used for transcription.
model: "` + defaultModel + `"

# System prompt sent with every request.
system_prompt: "` + defaultSystemPrompt + `"

# Upper bound on response tokens.
max_tokens: 1024

# HTTP request timeout in seconds.
timeout_seconds: 60
`
