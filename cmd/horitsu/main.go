// Package main is the Horitsu CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/horitsu/internal/answer"
	"github.com/hyperjump/horitsu/internal/chunker"
	"github.com/hyperjump/horitsu/internal/config"
	"github.com/hyperjump/horitsu/internal/corpus"
	"github.com/hyperjump/horitsu/internal/embedding"
	"github.com/hyperjump/horitsu/internal/extract"
	"github.com/hyperjump/horitsu/internal/ingest"
	"github.com/hyperjump/horitsu/internal/models"
	"github.com/hyperjump/horitsu/internal/normalize"
	"github.com/hyperjump/horitsu/internal/retrieval"
	"github.com/hyperjump/horitsu/internal/server"
	"github.com/hyperjump/horitsu/internal/vectorindex"
	"github.com/hyperjump/horitsu/internal/watcher"
	"github.com/hyperjump/horitsu/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/horitsu/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Service credentials usually live in a .env next to the binary during
	// development; absence is fine in production.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "ingest":
		runIngest()
	case "status":
		runStatus()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("horitsu version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ing := components.Ingestor
	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.New(
		cfg.Watch.Directories,
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			if _, err := ing.IngestFile(context.Background(), path); err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			if err := components.Store.DeleteChunksBySource(context.Background(), filepath.Base(path)); err != nil {
				logger.Warn("watch delete failed", zap.String("path", path), zap.Error(err))
			}
		},
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}

	srv := server.NewServer(
		components.Retriever,
		components.Synthesizer,
		components.Store,
		components.Ingestor,
		cfg,
		logger,
	)
	srv.SetWatcher(watchSvc, resolvedConfigPath)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuestion joins all positional args with spaces so multi-word
// questions work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = run the pipeline in-process)")
	topK := fs.Int("top-k", 0, "number of passages to retrieve (0 = server default)")
	mode := fs.String("mode", "", "answer mode: local or generative (empty = config default)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: horitsu ask [flags] <question>")
		os.Exit(1)
	}
	question := buildQuestion(fs.Args())
	if question == "" {
		fmt.Println("Usage: horitsu ask [flags] <question>")
		os.Exit(1)
	}
	if _, err := models.ParseMode(*mode); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	query := models.AskQuery{Query: question, TopK: *topK, Mode: *mode}

	var result models.Answer
	if *serverURL != "" {
		res, err := askViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		result = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		if query.Mode == "" {
			query.Mode = cfg.Answer.DefaultMode
		}
		ctx := context.Background()
		if err := query.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		matches, err := components.Retriever.Retrieve(ctx, query.Query, query.TopK)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Retrieval failed: %v\n", err)
			os.Exit(1)
		}
		parsedMode, _ := models.ParseMode(query.Mode)
		result = components.Synthesizer.Synthesize(ctx, query.Query, matches, parsedMode)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		if result.Error != "" {
			fmt.Fprintf(os.Stderr, "Error: %s\n", result.Error)
			os.Exit(1)
		}
		fmt.Println(result.Answer)
		fmt.Println()
		fmt.Printf("confidence: %s   sources: %s\n", result.Confidence, strings.Join(result.Sources, ", "))
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL string, query models.AskQuery) (*models.Answer, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var result models.Answer
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: horitsu ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		results, err := components.Ingestor.IngestDir(ctx, path, cfg.Watch.Extensions)
		if err != nil {
			fmt.Printf("Ingesting directory failed: %v\n", err)
			os.Exit(1)
		}
		total := 0
		for _, r := range results {
			total += r.Chunks
			fmt.Printf("%s: %d page(s), %d chunk(s)\n", r.SourceFile, r.Pages, r.Chunks)
		}
		fmt.Printf("Ingested %d file(s), %d chunk(s) from %s\n", len(results), total, path)
		return
	}
	result, err := components.Ingestor.IngestFile(ctx, path)
	if err != nil {
		fmt.Printf("Ingesting failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document ingested: %s (%d page(s), %d chunk(s), run %s)\n",
		result.SourceFile, result.Pages, result.Chunks, result.RunID)
}

// statusResponse is the shape of GET /api/v1/status.
type statusResponse struct {
	Chunks  int                    `json:"chunks"`
	Sources int                    `json:"sources"`
	Config  map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		store, err := corpus.NewSQLiteStore(cfg.Storage.DatabasePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		ctx := context.Background()
		chunkCount, err := store.CountChunks(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count chunks failed: %v\n", err)
			os.Exit(1)
		}
		sourceCount, err := store.CountSources(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count sources failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Chunks:  chunkCount,
			Sources: sourceCount,
			Config: map[string]interface{}{
				"embedding_model":      cfg.Embedding.Model,
				"embedding_dimensions": cfg.Embedding.Dimensions,
				"index_name":           cfg.Index.Name,
				"chunk_max_words":      cfg.Chunking.MaxWords,
				"chunk_overlap_words":  cfg.Chunking.OverlapWords,
				"answer_model":         cfg.Answer.Model,
				"database_path":        cfg.Storage.DatabasePath,
			},
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("chunks:   %d   # count of indexed text chunks\n", status.Chunks)
		fmt.Printf("sources:  %d   # count of distinct source documents\n", status.Sources)
		if len(status.Config) > 0 {
			fmt.Println()
			fmt.Println("# configuration")
			for _, key := range []string{"embedding_model", "embedding_dimensions", "index_name",
				"chunk_max_words", "chunk_overlap_words", "answer_model", "database_path"} {
				if v, ok := status.Config[key]; ok {
					fmt.Printf("%-22s %v\n", key+":", v)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runWatch() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: horitsu watch <add|remove|list> [path]")
		fmt.Println("  horitsu watch add <path>     Add directory to watch")
		fmt.Println("  horitsu watch remove <path>  Remove directory from watch")
		fmt.Println("  horitsu watch list           List watched directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[3:])
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: horitsu watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body, _ := json.Marshal(map[string]interface{}{"path": path, "sync": true})
		resp, err := http.Post(*serverURL+"/api/v1/watch/directories", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Add failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: horitsu watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/watch/directories?path="+url.QueryEscape(path), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Remove failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		resp, err := http.Get(*serverURL + "/api/v1/watch/directories")
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("List failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Printf("Parse failed: %v\n", err)
			os.Exit(1)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown watch subcommand: %s\n", sub)
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Store       corpus.Store
	Embedder    embedding.Embedder
	Index       vectorindex.Index
	Retriever   *retrieval.Retriever
	Synthesizer *answer.Synthesizer
	Ingestor    *ingest.Ingestor
	ChatClient  answer.ChatClient
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if c.ChatClient != nil {
		_ = c.ChatClient.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	if dir := filepath.Dir(cfg.Storage.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	store, err := corpus.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var embedder embedding.Embedder
	if cfg.Embedding.BaseURL != "" {
		embedder = embedding.NewClient(embedding.ClientConfig{
			BaseURL:    cfg.Embedding.BaseURL,
			APIKey:     os.Getenv(cfg.Embedding.APIKeyEnv),
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
	} else {
		// No embedding service configured; deterministic vectors keep the
		// pipeline usable for development.
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
		if logger != nil {
			logger.Warn("no embedding service configured, using mock embedder")
		}
	}

	index := vectorindex.NewPineconeIndex(vectorindex.PineconeConfig{
		Host:      cfg.Index.Host,
		APIKey:    os.Getenv(cfg.Index.APIKeyEnv),
		Namespace: cfg.Index.Namespace,
		TextLimit: cfg.Index.MetadataTextLimit,
	})

	retrieveOpts := []retrieval.RetrieverOption{}
	if debug && logger != nil {
		retrieveOpts = append(retrieveOpts, retrieval.WithLogger(logger))
	}
	retriever := retrieval.NewRetriever(embedder, index, &retrieval.Config{
		DefaultTopK:    cfg.Retrieval.DefaultTopK,
		OverfetchRatio: cfg.Retrieval.OverfetchRatio,
		BoostKeywords:  cfg.Retrieval.BoostKeywords,
		BoostWeight:    cfg.Retrieval.BoostWeight,
	}, retrieveOpts...)

	var chat answer.ChatClient
	if key := os.Getenv(cfg.Answer.APIKeyEnv); key != "" {
		chat = answer.NewOpenAIChatClient(answer.ChatConfig{
			BaseURL:     cfg.Answer.BaseURL,
			APIKey:      key,
			Model:       cfg.Answer.Model,
			Temperature: cfg.Answer.Temperature,
			MaxTokens:   cfg.Answer.MaxTokens,
		})
	} else if logger != nil {
		logger.Warn("no language model API key set, generative mode disabled",
			zap.String("env", cfg.Answer.APIKeyEnv))
	}
	synthOpts := []answer.SynthesizerOption{}
	if logger != nil {
		synthOpts = append(synthOpts, answer.WithLogger(logger))
	}
	synthesizer := answer.NewSynthesizer(chat, answer.LoadPersona(cfg.Storage.PromptPath), synthOpts...)

	chk := chunker.NewChunker(cfg.Chunking.MaxWords, cfg.Chunking.OverlapWords, cfg.Chunking.MinWords).
		WithMinEntryWords(cfg.Chunking.MinEntryWords)
	ingOpts := []ingest.IngestorOption{}
	if logger != nil {
		ingOpts = append(ingOpts, ingest.WithLogger(logger))
	}
	ingestor := ingest.NewIngestor(
		extract.NewExtractor(),
		normalize.NewNormalizer(cfg.Normalize.LookLines, cfg.Normalize.RepeatThreshold),
		chk,
		store,
		embedder,
		index,
		ingest.IngestorConfig{
			ChunksPath:   cfg.Storage.ChunksPath,
			ManifestPath: cfg.Storage.ManifestPath,
			BatchSize:    cfg.Embedding.BatchSize,
		},
		ingOpts...,
	)

	return &Components{
		Store:       store,
		Embedder:    embedder,
		Index:       index,
		Retriever:   retriever,
		Synthesizer: synthesizer,
		Ingestor:    ingestor,
		ChatClient:  chat,
	}, nil
}

func printUsage() {
	fmt.Println(`horitsu - Legal document question answering over a vector index

Usage:
  horitsu server [flags]            Start the HTTP server
  horitsu ask [flags] <question>    Ask a question over the ingested corpus
  horitsu ingest [flags] <path>     Ingest a document or directory
  horitsu status [flags]            Show corpus/storage status
  horitsu watch <add|remove|list>   Manage watched directories
  horitsu version                   Show version
  horitsu help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/horitsu/config.yaml)
  --debug            Enable debug logging

Ask Flags:
  --config string    Config file path (for in-process mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to run in-process.
  --top-k int        Number of passages to retrieve (default: server default)
  --mode string      Answer mode: local or generative (default from config)
  --output string    Output format: text or json (default: text)

Ingest Flags:
  --config string    Config file path

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Watch Flags:
  --server string    Server URL (default: http://localhost:8080)

Examples:
  horitsu server
  horitsu ingest statutes/ipc.pdf
  horitsu ask "what is the punishment for theft"
  horitsu ask --mode local "which section defines theft"
  horitsu status --output json
  horitsu watch add /path/to/statutes`)
}
