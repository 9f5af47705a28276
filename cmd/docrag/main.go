package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
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
	"docrag/internal/tui"
	"docrag/internal/vectorstore/memory"
	"docrag/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, docID, collection, query string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docrag/config.yaml if not provided)")
	flag.StringVar(&docID, "doc", "", "Document ID to query (optional when only one document is registered)")
	flag.StringVar(&collection, "collection", "", "Collection override")
	flag.StringVar(&query, "query", "", "One-shot query; prints the answer and exits instead of starting the chat")
	flag.Parse()

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
	doc, err := resolveDocument(ctx, reg, docID)
	if err != nil {
		log.Fatal(err)
	}

	if query != "" {
		res, err := svc.AnswerQuery(ctx, query, doc.ID, collection, nil)
		if err != nil {
			log.Fatalf("query failed: %v", err)
		}
		fmt.Println(res.Answer)
		for _, s := range res.Sources {
			fmt.Printf("[%d] %s p.%d (%.2f)\n", s.Ordinal, s.Document, s.Page, s.Score)
		}
		return
	}

	m := tui.New(svc, doc.ID, collection, doc.Name)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

// resolveDocument picks the document to chat with. With no explicit ID a
// single registered document is used; otherwise the choices are listed.
func resolveDocument(ctx context.Context, reg domain.Registry, docID string) (domain.Document, error) {
	if docID != "" {
		return reg.GetDocument(ctx, docID)
	}
	docs, err := reg.ListDocuments(ctx)
	if err != nil {
		return domain.Document{}, err
	}
	switch len(docs) {
	case 0:
		return domain.Document{}, fmt.Errorf("no documents ingested; run docrag-ingest first")
	case 1:
		return docs[0], nil
	default:
		fmt.Println("Multiple documents registered; pick one with --doc:")
		for _, d := range docs {
			fmt.Printf("  %s  %s (%d pages, %d chunks)\n", d.ID, d.Name, d.Pages, d.Chunks)
		}
		return domain.Document{}, fmt.Errorf("ambiguous document selection")
	}
}
