package config

// DefaultBoostKeywords is the legal-keyword set used by the re-ranker when
// none is configured. These are corpus-tuned heuristics, not algorithmic truths.
var DefaultBoostKeywords = []string{"section", "ipc", "punishment", "offense", "crime", "law", "act"}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/horitsu/data/db/corpus.db"
	}
	if cfg.Storage.ChunksPath == "" {
		cfg.Storage.ChunksPath = "/usr/local/var/horitsu/data/chunks/chunks.jsonl"
	}
	if cfg.Storage.ManifestPath == "" {
		cfg.Storage.ManifestPath = "/usr/local/var/horitsu/data/manifests/manifest.jsonl"
	}
	if cfg.Storage.PromptPath == "" {
		cfg.Storage.PromptPath = "/usr/local/etc/horitsu/prompts/system_prompt.txt"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:8081/v1"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "EMBEDDING_API_KEY"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 50
	}
	if cfg.Index.Name == "" {
		cfg.Index.Name = "legal-index-v1"
	}
	if cfg.Index.APIKeyEnv == "" {
		cfg.Index.APIKeyEnv = "PINECONE_API_KEY"
	}
	if cfg.Index.MetadataTextLimit == 0 {
		cfg.Index.MetadataTextLimit = 8000
	}
	if cfg.Chunking.MaxWords == 0 {
		cfg.Chunking.MaxWords = 250
	}
	if cfg.Chunking.OverlapWords == 0 {
		cfg.Chunking.OverlapWords = 100
	}
	if cfg.Chunking.MinWords == 0 {
		cfg.Chunking.MinWords = 40
	}
	if cfg.Chunking.MinEntryWords == 0 {
		cfg.Chunking.MinEntryWords = 50
	}
	if cfg.Normalize.LookLines == 0 {
		cfg.Normalize.LookLines = 2
	}
	if cfg.Normalize.RepeatThreshold == 0 {
		cfg.Normalize.RepeatThreshold = 0.8
	}
	if cfg.Retrieval.DefaultTopK == 0 {
		cfg.Retrieval.DefaultTopK = 5
	}
	if cfg.Retrieval.OverfetchRatio == 0 {
		cfg.Retrieval.OverfetchRatio = 2
	}
	if cfg.Retrieval.BoostKeywords == nil {
		cfg.Retrieval.BoostKeywords = append([]string(nil), DefaultBoostKeywords...)
	}
	if cfg.Retrieval.BoostWeight == 0 {
		cfg.Retrieval.BoostWeight = 0.1
	}
	if cfg.Answer.BaseURL == "" {
		cfg.Answer.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Answer.Model == "" {
		cfg.Answer.Model = "gpt-3.5-turbo"
	}
	if cfg.Answer.APIKeyEnv == "" {
		cfg.Answer.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Answer.Temperature == 0 {
		cfg.Answer.Temperature = 0.7
	}
	if cfg.Answer.MaxTokens == 0 {
		cfg.Answer.MaxTokens = 500
	}
	if cfg.Answer.DefaultMode == "" {
		cfg.Answer.DefaultMode = "generative"
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf", ".txt"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
