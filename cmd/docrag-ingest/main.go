package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"docrag/internal/assembler"
	"docrag/internal/chunker"
	"docrag/internal/classifier"
	"docrag/internal/config"
	"docrag/internal/domain"
	"docrag/internal/embedding/local"
	"docrag/internal/embedding/openai"
	"docrag/internal/generator"
	"docrag/internal/indexer"
	"docrag/internal/llm/ollama"
	"docrag/internal/prompt"
	"docrag/internal/registry"
	"docrag/internal/retriever"
	"docrag/internal/service"
	"docrag/internal/topics"
	"docrag/internal/vectorstore/memory"
	"docrag/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, collection string
	var reset, list bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docrag/config.yaml if not provided)")
	flag.StringVar(&collection, "collection", "", "Collection override")
	flag.BoolVar(&reset, "reset", false, "Drop the collection and its registry records before ingesting")
	flag.BoolVar(&list, "list", false, "List registered documents and exit")
	flag.Parse()
	inputs := flag.Args()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if collection == "" {
		collection = cfg.Collection
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Assemble components
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "local", "":
		dim := 0
		if cfg.Embedder.Local != nil {
			dim = cfg.Embedder.Local.Dimension
		}
		emb = local.New(dim)
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Dimension: cfg.Embedder.OpenAI.Dimension,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var st domain.VectorStore
	switch cfg.VectorStore.Type {
	case "memory", "":
		st = memory.NewStore()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		st = qdrant.NewStore(qdrant.Config{
			URL:     cfg.VectorStore.Qdrant.URL,
			APIKey:  cfg.VectorStore.Qdrant.APIKey,
			Timeout: time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	reg, err := registry.Open(cfg.Registry.Path)
	if err != nil {
		log.Fatalf("failed to open registry: %v", err)
	}
	defer reg.Close()

	llm := ollama.NewClient(ollama.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})

	svc := service.New(
		classifier.New(),
		retriever.New(emb, st, cfg.Retrieval.ScoreThreshold, logger),
		assembler.New(cfg.Retrieval.ContextChars),
		topics.New(0),
		prompt.New(cfg.Retrieval.HistoryWords),
		generator.New(llm, logger),
		indexer.New(chunker.New(cfg.Chunker.Size, cfg.Chunker.Overlap), emb, st, logger),
		st,
		reg,
		logger,
	)

	ctx := context.Background()

	if list {
		docs, err := svc.ListDocuments(ctx)
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		if len(docs) == 0 {
			fmt.Println("No documents registered.")
			return
		}
		for _, d := range docs {
			fmt.Printf("%s  %s  collection=%s pages=%d chunks=%d\n", d.ID, d.Name, d.Collection, d.Pages, d.Chunks)
		}
		return
	}

	if reset {
		if err := svc.ResetCollection(ctx, collection); err != nil {
			log.Fatalf("reset failed: %v", err)
		}
		fmt.Printf("Collection %s reset.\n", collection)
	}

	if len(inputs) == 0 {
		if reset {
			return
		}
		fmt.Println("Usage: docrag-ingest [--config=config.yaml] [--reset] [--list] file1.txt [file2.txt ...]")
		os.Exit(1)
	}

	for _, path := range inputs {
		pages, err := readPages(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		doc, err := svc.IngestDocument(ctx, collection, filepath.Base(path), pages)
		if err != nil {
			log.Fatalf("ingest %s: %v", path, err)
		}
		fmt.Printf("Ingested %s: id=%s pages=%d chunks=%d\n", doc.Name, doc.ID, doc.Pages, doc.Chunks)
	}
}

// readPages loads a text file and splits it into pages on form feeds.
// Files without form feeds become a single page.
func readPages(path string) ([]domain.PageContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(string(data), "\f")
	pages := make([]domain.PageContent, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, domain.PageContent{Number: i + 1, Text: part})
	}
	return pages, nil
}
