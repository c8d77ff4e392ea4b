package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/leyrag-labs/leyrag/internal/adapters/driven/cacheregistry/sqlite"
	configfile "github.com/leyrag-labs/leyrag/internal/adapters/driven/config/file"
	"github.com/leyrag-labs/leyrag/internal/adapters/driven/docs"
	geminiembed "github.com/leyrag-labs/leyrag/internal/adapters/driven/embedding/gemini"
	geminillm "github.com/leyrag-labs/leyrag/internal/adapters/driven/llm/gemini"
	"github.com/leyrag-labs/leyrag/internal/adapters/driven/vector/chroma"
	"github.com/leyrag-labs/leyrag/internal/adapters/driven/vector/memory"
	"github.com/leyrag-labs/leyrag/internal/adapters/driving/cli"
	"github.com/leyrag-labs/leyrag/internal/adapters/driving/httpapi"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
	"github.com/leyrag-labs/leyrag/internal/core/services"
	"github.com/leyrag-labs/leyrag/internal/logger"
)

const (
	defaultSessionTimeout = 30 * time.Minute
	defaultCacheTTL       = time.Hour
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	deps, cleanup, err := buildDependencies()
	if err != nil {
		return err
	}
	defer cleanup()

	return cli.Execute(deps)
}

func buildDependencies() (cli.Dependencies, func(), error) {
	noop := func() {}

	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return cli.Dependencies{}, noop, fmt.Errorf("init config store: %w", err)
	}

	promptStore, err := configfile.NewPromptStore("", services.DefaultPrompts)
	if err != nil {
		return cli.Dependencies{}, noop, fmt.Errorf("init prompt store: %w", err)
	}
	if err := promptStore.Watch(); err != nil {
		logger.Warn("Prompt live reload unavailable: %v", err)
	}

	index, err := buildIndex(configStore)
	if err != nil {
		return cli.Dependencies{}, noop, err
	}

	processor, err := docs.NewWebProcessor(docs.ProcessorConfig{
		DataDir: configStore.GetString("docs.data_dir"),
	})
	if err != nil {
		return cli.Dependencies{}, noop, fmt.Errorf("init document processor: %w", err)
	}
	reader := docs.NewFileReader()

	sessions := services.NewSessionStore(sessionTimeout(configStore))
	removal := services.NewRemovalService(index)

	deps := cli.Dependencies{
		Removal:  removal,
		Sessions: sessions,
		Index:    index,
		Config:   configStore,
	}

	cleanup := func() {
		_ = promptStore.Close()
	}

	apiKey := resolveAPIKey(configStore)
	if apiKey == "" {
		// Enough for configure/status/remove; query and ingest will
		// report the missing service.
		logger.Warn("No Gemini API key configured; run 'leyrag configure' or set GEMINI_API_KEY")
		return deps, cleanup, nil
	}

	embedder, err := geminiembed.NewEmbeddingService(geminiembed.Config{
		APIKey:            apiKey,
		Model:             configStore.GetString("gemini.embedding_model"),
		RequestsPerMinute: configStore.GetInt("gemini.requests_per_minute"),
	})
	if err != nil {
		return cli.Dependencies{}, cleanup, fmt.Errorf("init embedding service: %w", err)
	}

	generator, err := geminillm.NewGenerator(geminillm.Config{
		APIKey: apiKey,
		Model:  configStore.GetString("gemini.model"),
	})
	if err != nil {
		return cli.Dependencies{}, cleanup, fmt.Errorf("init generator: %w", err)
	}

	registry, err := sqlite.NewRegistry("")
	if err != nil {
		return cli.Dependencies{}, cleanup, fmt.Errorf("init cache registry: %w", err)
	}

	cache := services.NewCacheManager(generator, registry, generator, reader, generator.ModelName(), cacheTTL(configStore))
	cache.SetPromptStore(promptStore)

	anchor := configStore.GetString("query.anchor_law")
	if anchor == "" {
		anchor = services.DefaultAnchorLawID
	}
	retrieval := services.NewRetrievalService(embedder, index, generator, reader, cache, services.RetrievalConfig{
		AnchorLawID:    anchor,
		DefaultTopK:    configStore.GetInt("query.top_k"),
		RequestTimeout: time.Duration(configStore.GetInt("query.request_timeout_seconds")) * time.Second,
	})
	retrieval.SetPromptStore(promptStore)

	ingestion := services.NewIngestionService(processor, embedder, index)

	api := httpapi.NewServer(retrieval, sessions, index, httpapi.Config{
		Addr: configStore.GetString("server.addr"),
	})

	deps.Query = retrieval
	deps.Ingestion = ingestion
	deps.Cache = cache
	deps.Embedder = embedder
	deps.Generator = generator
	deps.API = api

	cleanup = func() {
		_ = promptStore.Close()
		_ = registry.Close()
	}
	return deps, cleanup, nil
}

func buildIndex(cfg driven.ConfigStore) (driven.VectorIndex, error) {
	switch backend := cfg.GetString("vector.backend"); backend {
	case "", "memory":
		return memory.NewIndex(), nil
	case "chroma":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		index, err := chroma.NewIndex(ctx, chroma.Config{
			BaseURL:    cfg.GetString("chroma.url"),
			Collection: cfg.GetString("chroma.collection"),
		})
		if err != nil {
			return nil, fmt.Errorf("connect to chroma: %w", err)
		}
		return index, nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", backend)
	}
}

func resolveAPIKey(cfg driven.ConfigStore) string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return cfg.GetString("gemini.api_key")
}

func cacheTTL(cfg driven.ConfigStore) time.Duration {
	if minutes := cfg.GetInt("cache.ttl_minutes"); minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return defaultCacheTTL
}

func sessionTimeout(cfg driven.ConfigStore) time.Duration {
	if minutes := cfg.GetInt("session.timeout_minutes"); minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return defaultSessionTimeout
}
