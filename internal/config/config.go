package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `json:"server"`
	Providers   []ProviderConfig  `json:"providers"`
	Cognition   CognitionConfig   `json:"cognition"`
	Database    DatabaseConfig    `json:"database"`
	Embedding   EmbeddingConfig   `json:"embedding"`
	Maintenance MaintenanceConfig `json:"maintenance"`
}

type ServerConfig struct {
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`
}

type ProviderConfig struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
}

// CognitionConfig shapes the per-session architecture.
type CognitionConfig struct {
	WorkspaceCapacity  int     `json:"workspace_capacity"`
	DecayRate          float64 `json:"decay_rate"`
	Threshold          float64 `json:"competition_threshold"`
	DecayFloor         float64 `json:"decay_floor"`
	MaxPoolRounds      int     `json:"max_pool_rounds"`
	MaxReflectionDepth int     `json:"max_reflection_depth"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `json:"postgres"`
	Neo4j    Neo4jConfig    `json:"neo4j"`
	Redis    RedisConfig    `json:"redis"`
	Qdrant   QdrantConfig   `json:"qdrant"`
}

type PostgresConfig struct {
	DSN string `json:"dsn"`
}

type Neo4jConfig struct {
	URI      string `json:"uri"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisConfig struct {
	URL string `json:"url"`
}

type QdrantConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type EmbeddingConfig struct {
	Endpoint  string `json:"endpoint"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	Dimension int    `json:"dimension"`
}

type MaintenanceConfig struct {
	SweepIntervalMinutes int `json:"sweep_interval_minutes"`
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON config file and substitutes environment variable references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Substitute ${VAR} and ${VAR:default} with environment values.
	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})

	// Unmarshal over a pre-filled struct so absent keys keep their
	// defaults while explicit values survive, zero included. A
	// max_reflection_depth of 0 or a decay_rate of 0 are valid
	// settings, not requests for the default.
	cfg := Default()
	if err := json.Unmarshal([]byte(resolved), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when a field is absent from
// the config file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Cognition: CognitionConfig{
			WorkspaceCapacity:  3,
			DecayRate:          0.15,
			Threshold:          0.5,
			DecayFloor:         0.2,
			MaxReflectionDepth: 3,
		},
		Maintenance: MaintenanceConfig{
			SweepIntervalMinutes: 5,
		},
	}
}
