package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/engine"
	"docqa/internal/extract"
	"docqa/internal/provider/openai"
	"docqa/internal/summarize"
	"docqa/internal/vectorstore/jsonfile"
	"docqa/internal/vectorstore/memory"
	mongostore "docqa/internal/vectorstore/mongo"
	"docqa/internal/vectorstore/qdrant"
)

type server struct {
	engine     *engine.Engine
	extractor  domain.Extractor
	summarizer *summarize.Summarizer
	cfg        *config.AppConfig
}

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docqa/config.yaml if not provided)")
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

	s := &server{
		engine: engine.New(client, store, client, engine.Options{
			SimilarityCutoff: cfg.Retrieval.SimilarityCutoff,
			TopK:             cfg.Retrieval.TopK,
		}),
		extractor: extract.New(),
		cfg:       cfg,
	}
	if cfg.Server.Summaries {
		s.summarizer = summarize.New(client)
	}

	r := gin.Default()
	r.POST("/query", s.handleQuery)
	r.POST("/upload", s.handleUpload)

	log.Printf("listening on %s", cfg.Server.Addr)
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal(err)
	}
}

type queryRequest struct {
	Question string        `json:"question"`
	History  []domain.Turn `json:"history"`
}

func (s *server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot have an empty question"})
		return
	}
	answer, err := s.engine.Query(c.Request.Context(), s.cfg.Namespace, req.Question, req.History)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (s *server) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}
	namespace := c.PostForm("namespace")
	if namespace == "" {
		namespace = s.cfg.Namespace
	}
	if err := os.MkdirAll(s.cfg.Server.UploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot create upload dir"})
		return
	}

	// Uploaded files are removed once the request finishes, whether or not
	// ingestion succeeded.
	var saved []string
	defer func() {
		for _, p := range saved {
			_ = os.Remove(p)
		}
	}()

	docs := make(map[string]string, len(files))
	summaries := make(map[string]string, len(files))
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		dst := filepath.Join(s.cfg.Server.UploadDir, name)
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("saving %s: %v", name, err)})
			return
		}
		saved = append(saved, dst)

		text, err := s.extractor.Extract(dst)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, domain.ErrUnsupportedFormat) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error(), "file": name})
			return
		}
		docs[name] = text

		if s.summarizer != nil {
			summary, err := s.summarizer.Summarize(c.Request.Context(), text)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "file": name})
				return
			}
			summaries[name] = summary
		}
	}

	records, err := s.engine.Ingest(c.Request.Context(), namespace, docs, s.cfg.Retrieval.ChunkSize, s.cfg.Retrieval.ChunkOverlap)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"message": "files processed successfully", "chunks": len(records)}
	if s.summarizer != nil {
		resp["summaries"] = summaries
	}
	c.JSON(http.StatusOK, resp)
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
