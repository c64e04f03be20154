package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/engine"
	"docqa/internal/extract"
	"docqa/internal/provider/openai"
	"docqa/internal/tui"
	"docqa/internal/vectorstore/jsonfile"
	"docqa/internal/vectorstore/memory"
	mongostore "docqa/internal/vectorstore/mongo"
	"docqa/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docqa/config.yaml if not provided)")
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

	client, err := openai.NewClient(openai.Config{
		APIKey:         os.Getenv(cfg.Provider.APIKeyEnv),
		BaseURL:        cfg.Provider.BaseURL,
		AzureEndpoint:  cfg.Provider.AzureEndpoint,
		EmbedModel:     cfg.Provider.EmbedModel,
		ChatModel:      cfg.Provider.ChatModel,
		EmbedDimension: cfg.Provider.EmbedDimension,
		Timeout:        time.Duration(cfg.Provider.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("provider init failed: %v", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("vector store init failed: %v", err)
	}

	eng := engine.New(client, store, client, engine.Options{
		SimilarityCutoff: cfg.Retrieval.SimilarityCutoff,
		TopK:             cfg.Retrieval.TopK,
	})

	banner := fmt.Sprintf("Namespace %q.", cfg.Namespace)
	if len(inputs) > 0 {
		extractor := extract.New()
		docs := make(map[string]string, len(inputs))
		for _, p := range inputs {
			text, err := extractor.Extract(p)
			if err != nil {
				log.Fatalf("extracting %s: %v", p, err)
			}
			docs[filepath.Base(p)] = text
		}
		records, err := eng.Ingest(context.Background(), cfg.Namespace, docs, cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
		if err != nil {
			log.Fatalf("ingest failed: %v", err)
		}
		banner = fmt.Sprintf("Ingested %d file(s) as %d chunk(s) into namespace %q.", len(docs), len(records), cfg.Namespace)
	}

	m := tui.New(eng, cfg.Namespace, banner)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

func buildStore(cfg *config.AppConfig) (domain.VectorStore, error) {
	switch cfg.VectorStore.Type {
	case "memory":
		return memory.New(), nil
	case "jsonfile", "":
		return jsonfile.New(cfg.VectorStore.JSONFile.Path), nil
	case "mongo":
		if cfg.VectorStore.Mongo == nil {
			return nil, fmt.Errorf("mongo config missing")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return mongostore.New(ctx, os.Getenv(cfg.VectorStore.Mongo.URIEnv), cfg.VectorStore.Mongo.Database, cfg.VectorStore.Mongo.Collection)
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		st := qdrant.New(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Dimension:  cfg.Provider.EmbedDimension,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := st.Init(ctx); err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}
