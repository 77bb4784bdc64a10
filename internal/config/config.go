// Package config loads CodeGraph's settings from an on-disk JSON or YAML
// file (chosen by the file's extension) with
// environment-variable overrides, following the teacher's UserConfig
// pattern: a single flat struct, a Default constructor, and an explicit
// Load that layers env vars over the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const envPrefix = "CODEGRAPH_"

// Config is the single source of truth for CodeGraph's runtime settings.
type Config struct {
	// StateDir is the root directory holding graph/, vectors/, cache/, and
	// meta.json (§6 Persisted state layout).
	StateDir string `json:"state_dir" yaml:"state_dir"`

	HTTP HTTPConfig `json:"http" yaml:"http"`

	Logging LoggingConfig `json:"logging" yaml:"logging"`

	LLM LLMConfig `json:"llm" yaml:"llm"`

	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`

	// VectorDimension is fixed at index creation; all vector entries must
	// share it (§3 Invariants).
	VectorDimension int `json:"vector_dimension" yaml:"vector_dimension"`

	Tiers TierTable `json:"tiers" yaml:"tiers"`

	// StepBudgetOverride, when > 0, overrides every tier's step budget —
	// CODEGRAPH_STEP_BUDGET_OVERRIDE.
	StepBudgetOverride int `json:"step_budget_override,omitempty" yaml:"step_budget_override,omitempty"`

	// AgentArchitecture selects "react" (default) or "lats".
	// "lats" is accepted but not implemented; see DESIGN.md Open Question 1.
	AgentArchitecture string `json:"agent_architecture" yaml:"agent_architecture"`

	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`

	Cache CacheConfig `json:"cache" yaml:"cache"`
}

// HTTPConfig configures the HTTP+SSE MCP transport.
type HTTPConfig struct {
	Host      string `json:"host" yaml:"host"`
	Port      int    `json:"port" yaml:"port"`
	KeepAlive string `json:"keep_alive" yaml:"keep_alive"` // duration string, e.g. "60s"
}

// LoggingConfig configures the categorized logger.
type LoggingConfig struct {
	DebugMode bool `json:"debug_mode" yaml:"debug_mode"`
}

// LLMConfig selects and configures the chat provider.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"` // anthropic, openai, zai
	Model    string `json:"model" yaml:"model"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// EmbeddingConfig selects and configures the embedding provider.
// Mirrors the teacher's two real adapters: genai (cloud) and ollama (local).
type EmbeddingConfig struct {
	Provider string `json:"provider" yaml:"provider"` // genai, ollama
	Model    string `json:"model" yaml:"model"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"` // ollama HTTP endpoint
}

// CacheConfig configures eviction quotas per kind (§4.4).
type CacheConfig struct {
	MaxEntriesPerKind int `json:"max_entries_per_kind" yaml:"max_entries_per_kind"`
}

// Default returns a Config with every field populated to a usable default,
// following the teacher's Default*Config() convention.
func Default() *Config {
	return &Config{
		StateDir: ".codegraph",
		HTTP: HTTPConfig{
			Host:      "127.0.0.1",
			Port:      8420,
			KeepAlive: "60s",
		},
		Logging: LoggingConfig{DebugMode: false},
		LLM: LLMConfig{
			Provider: "anthropic",
			Model:    "claude-sonnet-4-5",
		},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			Model:    "embeddinggemma",
			Endpoint: "http://localhost:11434",
		},
		VectorDimension:   768,
		Tiers:             DefaultTierTable(),
		AgentArchitecture: "react",
		Timeouts:          DefaultTimeouts(),
		Cache:             CacheConfig{MaxEntriesPerKind: 10_000},
	}
}

// Load reads configPath (if it exists) over the defaults, then applies
// CODEGRAPH_* environment variable overrides, then validates.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", configPath, err)
			}
		} else if isYAMLPath(configPath) {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envPrefix + "STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv(envPrefix + "HTTP_HOST"); v != "" {
		cfg.HTTP.Host = v
	}
	if v := os.Getenv(envPrefix + "HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = n
		}
	}
	if v := os.Getenv(envPrefix + "HTTP_KEEP_ALIVE"); v != "" {
		cfg.HTTP.KeepAlive = v
	}
	if v := os.Getenv(envPrefix + "LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv(envPrefix + "LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv(envPrefix + "EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv(envPrefix + "VECTOR_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.VectorDimension = n
		}
	}
	if v := os.Getenv(envPrefix + "STEP_BUDGET_OVERRIDE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StepBudgetOverride = n
		}
	}
	if v := os.Getenv(envPrefix + "AGENT_ARCHITECTURE"); v != "" {
		cfg.AgentArchitecture = v
	}
}

// Validate rejects configurations that would violate a spec invariant at
// startup rather than failing later inside a request.
func (c *Config) Validate() error {
	if c.VectorDimension <= 0 {
		return fmt.Errorf("vector_dimension must be > 0")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	switch c.AgentArchitecture {
	case "react", "lats":
	default:
		return fmt.Errorf("agent_architecture must be 'react' or 'lats', got %q", c.AgentArchitecture)
	}
	return nil
}

// GraphDir, VectorsDir, CacheDir, MetaPath are the four subdirectories
// under StateDir described in §6 Persisted state layout.
func (c *Config) GraphDir() string   { return filepath.Join(c.StateDir, "graph") }
func (c *Config) VectorsDir() string { return filepath.Join(c.StateDir, "vectors") }
func (c *Config) CacheDir() string   { return filepath.Join(c.StateDir, "cache") }
func (c *Config) MetaPath() string   { return filepath.Join(c.StateDir, "meta.json") }
