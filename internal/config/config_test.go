package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Retrieval.ChunkSize != 6000 || cfg.Retrieval.ChunkOverlap != 500 {
		t.Errorf("chunking defaults wrong: %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.SimilarityCutoff != 0.7 || cfg.Retrieval.TopK != 10 {
		t.Errorf("ranking defaults wrong: %+v", cfg.Retrieval)
	}
	if cfg.VectorStore.Type != "jsonfile" || cfg.VectorStore.JSONFile == nil {
		t.Errorf("store defaults wrong: %+v", cfg.VectorStore)
	}
}

func TestLoadFillsPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "namespace: contracts\nretrieval:\n  chunk_size: 1000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Namespace != "contracts" {
		t.Errorf("namespace = %q", cfg.Namespace)
	}
	if cfg.Retrieval.ChunkSize != 1000 {
		t.Errorf("explicit chunk_size overridden: %d", cfg.Retrieval.ChunkSize)
	}
	if cfg.Retrieval.ChunkOverlap != 500 {
		t.Errorf("missing chunk_overlap not defaulted: %d", cfg.Retrieval.ChunkOverlap)
	}
	if cfg.Provider.EmbedDimension != 1536 {
		t.Errorf("missing embed_dimension not defaulted: %d", cfg.Provider.EmbedDimension)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Namespace = "audits"
	cfg.VectorStore = VectorStoreConfig{
		Type:  "mongo",
		Mongo: &MongoConfig{Database: "audits_db"},
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Namespace != "audits" {
		t.Errorf("namespace = %q", got.Namespace)
	}
	if got.VectorStore.Type != "mongo" || got.VectorStore.Mongo == nil {
		t.Fatalf("store config lost: %+v", got.VectorStore)
	}
	if got.VectorStore.Mongo.Database != "audits_db" {
		t.Errorf("database = %q", got.VectorStore.Mongo.Database)
	}
	if got.VectorStore.Mongo.URIEnv != "MONGO_URI" {
		t.Errorf("uri_env not defaulted: %q", got.VectorStore.Mongo.URIEnv)
	}
}
