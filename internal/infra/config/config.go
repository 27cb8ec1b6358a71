// Package config provides application-wide configuration.
// Values come from, lowest precedence first: built-in defaults, an optional
// YAML file named by AURA_CONFIG_FILE, then environment variables. A .env file
// can seed the environment before Load via LoadDotEnv.
// All fields have safe defaults so the binary runs locally without any setup.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"

	"github.com/matiasleandrokruk/aura/internal/infra/llm"
)

// Config holds runtime configuration for the aura service.
type Config struct {
	// LLM
	LLMProvider string        // LLM_PROVIDER: default: "openrouter"
	LLMAPIKey   string        // LLM_API_KEY: empty means heuristic-only
	LLMModel    string        // LLM_MODEL: default: provider's catalog model
	LLMBaseURL  string        // LLM_BASE_URL: default: provider's catalog URL
	LLMTimeout  time.Duration // LLM_TIMEOUT: default: 15s
	LLMReferer  string        // LLM_REFERER: OpenRouter attribution
	LLMTitle    string        // LLM_TITLE: OpenRouter attribution

	// HTTP
	HTTPHost           string   // HTTP_HOST: default: "0.0.0.0"
	HTTPPort           int      // HTTP_PORT: default: 8000
	CORSAllowedOrigins []string // CORS_ALLOWED_ORIGINS: comma-separated

	// Logging
	LogLevel  string // LOG_LEVEL: debug|info|warn|error
	LogFormat string // LOG_FORMAT: text|json

	// Optional backing services; empty disables them.
	AnalysisDBPath string        // ANALYSIS_DB_PATH
	ValkeyAddr     string        // VALKEY_ADDR
	ValkeyPassword string        // VALKEY_PASSWORD
	CacheTTL       time.Duration // CACHE_TTL: default: 1h
}

const (
	EnvConfigFile = "AURA_CONFIG_FILE"

	envKeyLLMProvider        = "LLM_PROVIDER"
	envKeyLLMAPIKey          = "LLM_API_KEY"
	envKeyLLMModel           = "LLM_MODEL"
	envKeyLLMBaseURL         = "LLM_BASE_URL"
	envKeyLLMTimeout         = "LLM_TIMEOUT"
	envKeyLLMReferer         = "LLM_REFERER"
	envKeyLLMTitle           = "LLM_TITLE"
	envKeyHTTPHost           = "HTTP_HOST"
	envKeyHTTPPort           = "HTTP_PORT"
	envKeyCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	envKeyLogLevel           = "LOG_LEVEL"
	envKeyLogFormat          = "LOG_FORMAT"
	envKeyAnalysisDBPath     = "ANALYSIS_DB_PATH"
	envKeyValkeyAddr         = "VALKEY_ADDR"
	envKeyValkeyPassword     = "VALKEY_PASSWORD"
	envKeyCacheTTL           = "CACHE_TTL"

	defaultCORSAllowedOrigins = "http://localhost:5173,http://127.0.0.1:5173,*"
)

// LoadDotEnv seeds the process environment from path. Variables that are
// already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := gotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration, applying defaults for missing values. It fails
// only on unreadable input (bad file, unparsable duration or port); use
// Validate for semantic checks.
func Load() (Config, error) {
	file, err := readFile(os.Getenv(EnvConfigFile))
	if err != nil {
		return Config{}, err
	}
	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if v := file[strings.ToLower(key)]; v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		LLMProvider:        strings.ToLower(strings.TrimSpace(get(envKeyLLMProvider, llm.ProviderOpenRouter))),
		LLMAPIKey:          strings.TrimSpace(get(envKeyLLMAPIKey, "")),
		LLMModel:           get(envKeyLLMModel, ""),
		LLMBaseURL:         get(envKeyLLMBaseURL, ""),
		LLMReferer:         get(envKeyLLMReferer, ""),
		LLMTitle:           get(envKeyLLMTitle, ""),
		HTTPHost:           get(envKeyHTTPHost, "0.0.0.0"),
		CORSAllowedOrigins: splitList(get(envKeyCORSAllowedOrigins, defaultCORSAllowedOrigins)),
		LogLevel:           strings.ToLower(get(envKeyLogLevel, "info")),
		LogFormat:          strings.ToLower(get(envKeyLogFormat, "text")),
		AnalysisDBPath:     get(envKeyAnalysisDBPath, ""),
		ValkeyAddr:         get(envKeyValkeyAddr, ""),
		ValkeyPassword:     get(envKeyValkeyPassword, ""),
	}

	if cfg.LLMTimeout, err = parseDuration(envKeyLLMTimeout, get(envKeyLLMTimeout, llm.DefaultTimeout.String())); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = parseDuration(envKeyCacheTTL, get(envKeyCacheTTL, "1h")); err != nil {
		return Config{}, err
	}
	port := get(envKeyHTTPPort, "8000")
	if cfg.HTTPPort, err = strconv.Atoi(strings.TrimSpace(port)); err != nil {
		return Config{}, fmt.Errorf("config: %s=%q: %w", envKeyHTTPPort, port, err)
	}
	return cfg, nil
}

// Validate checks values Load cannot reject on syntax alone.
func (c Config) Validate() error {
	var errs []error
	if _, err := llm.LookupEndpoint(c.LLMProvider); err != nil {
		errs = append(errs, err)
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("config: %s must be in 1..65535, got %d", envKeyHTTPPort, c.HTTPPort))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("config: %s must be positive", envKeyLLMTimeout))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("config: %s must be positive", envKeyCacheTTL))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: %s %q not one of debug|info|warn|error", envKeyLogLevel, c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: %s %q not one of text|json", envKeyLogFormat, c.LogFormat))
	}
	return errors.Join(errs...)
}

// ProviderConfig resolves the provider catalog entry plus overrides.
func (c Config) ProviderConfig() (llm.ProviderConfig, error) {
	ep, err := llm.LookupEndpoint(c.LLMProvider)
	if err != nil {
		return llm.ProviderConfig{}, err
	}
	pc := llm.ProviderConfig{
		Name:        ep.Name,
		APIKey:      c.LLMAPIKey,
		EndpointURL: ep.URL,
		Model:       ep.DefaultModel,
		Referer:     c.LLMReferer,
		Title:       c.LLMTitle,
		Timeout:     c.LLMTimeout,
	}
	if c.LLMBaseURL != "" {
		pc.EndpointURL = c.LLMBaseURL
	}
	if c.LLMModel != "" {
		pc.Model = c.LLMModel
	}
	return pc, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(c.HTTPPort))
}

// readFile loads a flat YAML mapping whose keys are the lower-cased env names
// (llm_provider, http_port, ...). An empty path yields an empty mapping.
func readFile(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[strings.ToLower(k)] = v
	}
	return out, nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q: %w", key, raw, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
