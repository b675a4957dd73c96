package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "0.0.0.0"
  port: 9090
storage:
  database_path: "./data/corpus.db"
chunking:
  max_words: 120
retrieval:
  boost_keywords: ["section", "act"]
  boost_weight: 0.2
watch:
  directories: ["./docs"]
  extensions: [".pdf"]
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server = %+v", cfg.Server)
	}
	// "./" paths resolve relative to the config directory.
	want := filepath.Join(dir, "data/corpus.db")
	if cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if len(cfg.Watch.Directories) != 1 || cfg.Watch.Directories[0] != filepath.Join(dir, "docs") {
		t.Errorf("watch directories = %v", cfg.Watch.Directories)
	}
	// Explicit values survive; untouched fields get defaults.
	if cfg.Chunking.MaxWords != 120 {
		t.Errorf("max_words = %d, want 120", cfg.Chunking.MaxWords)
	}
	if cfg.Chunking.OverlapWords != 100 {
		t.Errorf("overlap_words = %d, want default 100", cfg.Chunking.OverlapWords)
	}
	if len(cfg.Retrieval.BoostKeywords) != 2 || cfg.Retrieval.BoostWeight != 0.2 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Embedding.Dimensions != 384 || cfg.Embedding.BatchSize != 50 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Index.Name != "legal-index-v1" || cfg.Index.MetadataTextLimit != 8000 {
		t.Errorf("index = %+v", cfg.Index)
	}
	if cfg.Chunking.MaxWords != 250 || cfg.Chunking.OverlapWords != 100 ||
		cfg.Chunking.MinWords != 40 || cfg.Chunking.MinEntryWords != 50 {
		t.Errorf("chunking = %+v", cfg.Chunking)
	}
	if cfg.Normalize.LookLines != 2 || cfg.Normalize.RepeatThreshold != 0.8 {
		t.Errorf("normalize = %+v", cfg.Normalize)
	}
	if cfg.Retrieval.DefaultTopK != 5 || cfg.Retrieval.OverfetchRatio != 2 || cfg.Retrieval.BoostWeight != 0.1 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	if len(cfg.Retrieval.BoostKeywords) != len(DefaultBoostKeywords) {
		t.Errorf("boost keywords = %v", cfg.Retrieval.BoostKeywords)
	}
	if cfg.Answer.Temperature != 0.7 || cfg.Answer.MaxTokens != 500 || cfg.Answer.DefaultMode != "generative" {
		t.Errorf("answer = %+v", cfg.Answer)
	}
	if !cfg.Watch.RecursiveOrDefault() {
		t.Error("recursive should default to true")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	var cfg Config
	ApplyDefaults(&cfg)
	cfg.Server.Port = 9999
	if err := Save(path, &cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", loaded.Server.Port)
	}
}
