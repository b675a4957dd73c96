// Package config provides configuration loading and structs for the Horitsu server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Answer    AnswerConfig    `yaml:"answer"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the chunk database and corpus artifacts.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	ChunksPath   string `yaml:"chunks_path"`
	ManifestPath string `yaml:"manifest_path"`
	PromptPath   string `yaml:"prompt_path"`
}

// EmbeddingConfig holds settings for the remote embedding service.
type EmbeddingConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
}

// IndexConfig holds settings for the remote vector index.
type IndexConfig struct {
	Host      string `yaml:"host"`
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace"`
	APIKeyEnv string `yaml:"api_key_env"`
	// MetadataTextLimit caps the chunk text stored as index metadata, in bytes.
	MetadataTextLimit int `yaml:"metadata_text_limit"`
}

// ChunkingConfig holds chunk boundary policy.
type ChunkingConfig struct {
	MaxWords      int `yaml:"max_words"`
	OverlapWords  int `yaml:"overlap_words"`
	MinWords      int `yaml:"min_words"`
	MinEntryWords int `yaml:"min_entry_words"`
}

// NormalizeConfig holds header/footer detection thresholds.
type NormalizeConfig struct {
	LookLines       int     `yaml:"look_lines"`
	RepeatThreshold float64 `yaml:"repeat_threshold"`
}

// RetrievalConfig holds search and re-ranking settings.
type RetrievalConfig struct {
	DefaultTopK    int      `yaml:"default_top_k"`
	OverfetchRatio int      `yaml:"overfetch_ratio"`
	BoostKeywords  []string `yaml:"boost_keywords"`
	BoostWeight    float64  `yaml:"boost_weight"`
}

// AnswerConfig holds language-model settings for the generative strategy.
type AnswerConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	DefaultMode string  `yaml:"default_mode"`
}

// WatchConfig holds source-directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.ChunksPath = expandPath(cfg.Storage.ChunksPath, configDir)
	cfg.Storage.ManifestPath = expandPath(cfg.Storage.ManifestPath, configDir)
	cfg.Storage.PromptPath = expandPath(cfg.Storage.PromptPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
