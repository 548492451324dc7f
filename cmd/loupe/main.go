// Package main is the loupe CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loupe-search/loupe/internal/cli"
	"github.com/loupe-search/loupe/internal/config"
	"github.com/loupe-search/loupe/internal/embedding"
	"github.com/loupe-search/loupe/internal/models"
	"github.com/loupe-search/loupe/internal/search"
	"github.com/loupe-search/loupe/internal/storage"
	"github.com/loupe-search/loupe/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

// loadConfig resolves configuration. An explicit -config path must load or the
// command fails. Without one, config.yaml in the current directory is used if
// present, else the built-in defaults; the vault works without any config file.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	if cwd, err := os.Getwd(); err == nil {
		fallback := filepath.Join(cwd, "config.yaml")
		if _, statErr := os.Stat(fallback); statErr == nil {
			cfg, loadErr := config.Load(fallback)
			if loadErr != nil {
				return nil, "", loadErr
			}
			return cfg, fallback, nil
		}
	}
	return config.Default(), "", nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("loupe version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: loupe search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Filter fields: status, priority, due, tags, title, folder, path.
Filter operators: = != < <= > >= and HAS (tags only), combined with AND, OR, NOT.

Examples:
  loupe search meeting notes about the quarterly roadmap
  loupe search "meeting notes"                              # same as unquoted
  loupe search -n 10 -folder projects/alpha deployment checklist
  loupe search -filter "status='active' AND priority<=2" launch plan
  loupe search -filter "tags HAS 'planning'" -output json roadmap
`)
}

// buildQuery joins all positional args with spaces so multi-word queries work
// the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// reorderArgs moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. The flag package
// stops at the first non-flag argument, so "loupe search roadmap -n 10" would
// otherwise leave -n unparsed.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path (default: ./config.yaml if present)")
	dbPath := fs.String("db", "", "vault index path (overrides config)")
	limit := fs.Int("n", 0, "number of results (default from config, 5)")
	folder := fs.String("folder", "", "restrict results to notes under this folder prefix")
	filterExpr := fs.String("filter", "", `metadata filter, e.g. "status='active' AND priority<=2"`)
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	queryStr := buildQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Storage.DatabasePath = *dbPath
	}
	if *limit == 0 {
		*limit = cfg.Search.DefaultLimit
	}
	debugMode := cfg.Debug || *debug

	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		if errors.Is(err, storage.ErrVaultNotFound) {
			fmt.Fprintf(os.Stderr, "Vault index not found at %s\n", cfg.Storage.DatabasePath)
			fmt.Fprintln(os.Stderr, "Run your vault indexer to build it, then retry.")
		} else {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		}
		os.Exit(1)
	}
	defer components.Close()

	query := &models.SearchQuery{
		Query:  queryStr,
		Limit:  *limit,
		Folder: *folder,
		Filter: *filterExpr,
	}
	response, err := components.Retriever.Search(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path (default: ./config.yaml if present)")
	dbPath := fs.String("db", "", "vault index path (overrides config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Storage.DatabasePath = *dbPath
	}

	store, err := storage.OpenVault(cfg.Storage.DatabasePath)
	if err != nil {
		if errors.Is(err, storage.ErrVaultNotFound) {
			fmt.Fprintf(os.Stderr, "Vault index not found at %s\n", cfg.Storage.DatabasePath)
			fmt.Fprintln(os.Stderr, "Run your vault indexer to build it, then retry.")
		} else {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		}
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	notes, err := store.CountNotes(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	chunks, err := store.CountChunks(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	dims, err := store.EmbeddingDimensions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}

	status := &models.VaultStatus{
		DatabasePath: cfg.Storage.DatabasePath,
		Notes:        notes,
		Chunks:       chunks,
		Dimensions:   dims,
	}
	if diskBytes, diskErr := storage.DiskUsageBytes(cfg.Storage.DatabasePath); diskErr == nil {
		status.DiskBytes = diskBytes
	}

	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Store     storage.Store
	Embedder  embedding.Embedder
	Retriever *search.Retriever
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.OpenVault(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(&cfg.Embedding)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	opts := []search.Option{}
	if debug {
		opts = append(opts, search.WithLogger(logger))
	}
	retriever := search.NewRetriever(store, embedder, &cfg.Search, opts...)

	return &Components{Store: store, Embedder: embedder, Retriever: retriever}, nil
}

// newEmbedder selects the configured embedder. Queries must be embedded with
// the same model the vault indexer used, so an unavailable ONNX model is an
// error rather than a silent fallback; a model path of "mock" selects the
// deterministic mock embedder for fixtures and tests.
func newEmbedder(cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.ModelPath == "mock" {
		return embedding.NewMockEmbedder(cfg.Dimensions), nil
	}
	onnx, err := embedding.NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
	if err != nil {
		return nil, err
	}
	return embedding.WithCache(onnx, cfg.CacheSize), nil
}

func printUsage() {
	fmt.Println(`loupe - Semantic search over your notes vault

Usage:
  loupe search [flags] <query>    Search the vault
  loupe status [flags]            Show vault index status
  loupe version                   Show version
  loupe help                      Show this help

Search Flags:
  -config string   Config file path (default: ./config.yaml if present)
  -db string       Vault index path (overrides config)
  -n int           Number of results (default: 5)
  -folder string   Restrict results to notes under this folder prefix
  -filter string   Metadata filter, e.g. "status='active' AND priority<=2"
  -output string   Output format: text or json (default: text)
  -debug           Enable debug logging

Status Flags:
  -config string   Config file path
  -db string       Vault index path (overrides config)
  -output string   Output format: text or json (default: text)

Filter fields: status, priority, due, tags, title, folder, path.
Filter operators: = != < <= > >= and HAS (tags only), combined with AND, OR, NOT.

Examples:
  loupe search meeting notes about the quarterly roadmap
  loupe search -n 10 "sprint retrospective"
  loupe search -folder projects/alpha deployment checklist
  loupe search -filter "status='active' AND priority<=2" launch plan
  loupe search -filter "tags HAS 'planning'" -output json roadmap
  loupe status
  loupe status -output json`)
}
