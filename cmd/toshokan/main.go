// Package main is the Toshokan CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/toshokan/internal/cli"
	"github.com/hyperjump/toshokan/internal/client"
	"github.com/hyperjump/toshokan/internal/config"
	"github.com/hyperjump/toshokan/internal/embedding"
	"github.com/hyperjump/toshokan/internal/extract"
	"github.com/hyperjump/toshokan/internal/ingest"
	"github.com/hyperjump/toshokan/internal/query"
	"github.com/hyperjump/toshokan/internal/server"
	"github.com/hyperjump/toshokan/internal/store"
	"github.com/hyperjump/toshokan/internal/watcher"
	"github.com/hyperjump/toshokan/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/toshokan/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so that running from the project
// dir picks up the project's config. Falls back to built-in defaults when
// neither file exists.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				return config.Load(fallback)
			}
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "index":
		runIndex()
	case "add":
		runAdd()
	case "query":
		runQuery()
	case "list":
		runList()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("toshokan version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, err := loadConfig(*configPath)
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

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watch *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		pipeline := components.Pipeline
		watch = watcher.NewWatcher(
			cfg.Watch.Directories,
			components.Registry.Supports,
			func(path string) {
				if _, err := pipeline.IngestFile(watchCtx, path); err != nil {
					logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				}
			},
			watcher.WithLogger(logger),
		)
		if err := watch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(
		components.Pipeline,
		components.Engine,
		components.Store,
		&cfg.Server,
		components.ModelLoaded,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watch != nil {
		watch.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// runIndex ingests a folder (or single file) directly into the local store,
// without going through a server.
func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: toshokan index [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
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

	components, err := initializeComponents(cfg, logger)
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
		report, runErr := components.Pipeline.IngestFolder(ctx, path)
		_ = cli.WriteFolderReport(os.Stdout, report, format)
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "Indexing stopped: %v\n", runErr)
			os.Exit(1)
		}
		return
	}
	added, err := components.Pipeline.IngestFile(ctx, path)
	if err != nil {
		fmt.Printf("Indexing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Indexed %s (%d chunks)\n", filepath.Base(path), added)
}

func newClient(servers []string, timeoutSeconds int) (*client.Client, error) {
	descriptors, err := client.ParseServers(servers)
	if err != nil {
		return nil, err
	}
	router, err := client.NewRouter(descriptors, time.Duration(timeoutSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	cfg := config.Default()
	return client.NewClient(router, cfg.Ingest.MaxFileSizeBytes()), nil
}

// clientFromFlags builds a client from -server flags or the config file's
// client section when no -server flag is given.
func clientFromFlags(configPath string, servers []string, timeoutSeconds int) (*client.Client, error) {
	if len(servers) == 0 {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return nil, err
		}
		if timeoutSeconds == 0 {
			timeoutSeconds = cfg.Client.TimeoutSeconds
		}
		return newClient(cfg.Client.Servers, timeoutSeconds)
	}
	return newClient(servers, timeoutSeconds)
}

// serverList is a repeatable -server flag.
type serverList []string

func (s *serverList) String() string     { return strings.Join(*s, ",") }
func (s *serverList) Set(v string) error { *s = append(*s, v); return nil }

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	var servers serverList
	fs.Var(&servers, "server", "server address host[:port] (repeatable)")
	timeout := fs.Int("timeout", 0, "request timeout in seconds")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: toshokan add [flags] <file>")
		os.Exit(1)
	}

	c, err := clientFromFlags(*configPath, servers, *timeout)
	if err != nil {
		fmt.Printf("Failed to create client: %v\n", err)
		os.Exit(1)
	}
	resp, err := c.AddDocument(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Add failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(resp.Message)
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	var servers serverList
	fs.Var(&servers, "server", "server address host[:port] (repeatable)")
	timeout := fs.Int("timeout", 0, "request timeout in seconds")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: toshokan query [flags] <question>")
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))

	c, err := clientFromFlags(*configPath, servers, *timeout)
	if err != nil {
		fmt.Printf("Failed to create client: %v\n", err)
		os.Exit(1)
	}
	resp, err := c.Query(context.Background(), question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteQueryResults(os.Stdout, resp, format)
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	var servers serverList
	fs.Var(&servers, "server", "server address host[:port] (repeatable)")
	timeout := fs.Int("timeout", 0, "request timeout in seconds")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	c, err := clientFromFlags(*configPath, servers, *timeout)
	if err != nil {
		fmt.Printf("Failed to create client: %v\n", err)
		os.Exit(1)
	}
	resp, err := c.ListDocuments(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteDocumentList(os.Stdout, resp, format)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	var servers serverList
	fs.Var(&servers, "server", "server address host[:port] (repeatable)")
	timeout := fs.Int("timeout", 0, "request timeout in seconds")
	_ = fs.Parse(os.Args[2:])

	c, err := clientFromFlags(*configPath, servers, *timeout)
	if err != nil {
		fmt.Printf("Failed to create client: %v\n", err)
		os.Exit(1)
	}
	health, err := c.Health(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("status:       %s\n", health.Status)
	fmt.Printf("model_loaded: %t\n", health.ModelLoaded)
	fmt.Printf("index_loaded: %t\n", health.IndexLoaded)
}

// Components holds initialized services for server and index commands.
type Components struct {
	Store       *store.Store
	Embedder    embedding.Embedder
	Registry    *extract.Registry
	Pipeline    *ingest.Pipeline
	Engine      *query.Engine
	ModelLoaded bool
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	var embedder embedding.Embedder
	modelLoaded := false
	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		logger.Warn("ONNX model unavailable, using mock embedder", zap.Error(err))
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = onnxEmbedder
		modelLoaded = true
	}

	st := store.NewStore(cfg.Storage.IndexDir, embedder, store.WithLogger(logger))
	registry := extract.NewRegistry()
	pipeline := ingest.NewPipeline(st, registry, &cfg.Ingest, ingest.WithLogger(logger))
	engine := query.NewEngine(st, cfg.Query.TopK, query.WithLogger(logger))

	return &Components{
		Store:       st,
		Embedder:    embedder,
		Registry:    registry,
		Pipeline:    pipeline,
		Engine:      engine,
		ModelLoaded: modelLoaded,
	}, nil
}

func printUsage() {
	fmt.Println(`toshokan - Document knowledge base with semantic retrieval

Usage:
  toshokan server [flags]            Start the HTTP server
  toshokan index [flags] <path>      Index a file or folder into the local store
  toshokan add [flags] <file>        Upload a file to a running server
  toshokan query [flags] <question>  Ask the knowledge base
  toshokan list [flags]              List indexed documents
  toshokan status [flags]            Show server health
  toshokan version                   Show version
  toshokan help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/toshokan/config.yaml)
  --debug            Enable debug logging

Client Flags (add, query, list, status):
  --config string    Config file path (servers and timeout come from its client section)
  --server string    Server address host[:port]; repeat for a failover pool
  --timeout int      Request timeout in seconds (default: 120)
  --output string    Output format: text or json (query, list)

Examples:
  toshokan server
  toshokan index ./docs
  toshokan add --server localhost:8000 report.pdf
  toshokan query --server host-a --server host-b "payment terms"
  toshokan list --output json
  toshokan status`)
}
