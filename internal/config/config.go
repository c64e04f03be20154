package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds configuration for the embedding/chat model client.
// AzureEndpoint switches the client to Azure OpenAI deployments.
type ProviderConfig struct {
	APIKeyEnv      string `yaml:"api_key_env"`
	BaseURL        string `yaml:"base_url,omitempty"`
	AzureEndpoint  string `yaml:"azure_endpoint,omitempty"`
	EmbedModel     string `yaml:"embed_model"`
	ChatModel      string `yaml:"chat_model"`
	EmbedDimension int    `yaml:"embed_dimension"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
}

// RetrievalConfig carries the chunking and ranking knobs.
type RetrievalConfig struct {
	ChunkSize        int     `yaml:"chunk_size"`
	ChunkOverlap     int     `yaml:"chunk_overlap"`
	SimilarityCutoff float64 `yaml:"similarity_cutoff"`
	TopK             int     `yaml:"top_k"`
}

// JSONFileConfig locates the flat-file vector index.
type JSONFileConfig struct {
	Path string `yaml:"path"`
}

// MongoConfig contains connection details for a MongoDB vector store.
type MongoConfig struct {
	URIEnv     string `yaml:"uri_env"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	Type     string          `yaml:"type"`
	JSONFile *JSONFileConfig `yaml:"jsonfile,omitempty"`
	Mongo    *MongoConfig    `yaml:"mongo,omitempty"`
	Qdrant   *QdrantConfig   `yaml:"qdrant,omitempty"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	UploadDir string `yaml:"upload_dir"`
	Summaries bool   `yaml:"summaries"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Namespace   string            `yaml:"namespace"`
	Provider    ProviderConfig    `yaml:"provider"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Server      ServerConfig      `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/docqa/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Namespace: "default",
		Provider: ProviderConfig{
			APIKeyEnv:      "OPENAI_API_KEY",
			EmbedModel:     "text-embedding-3-small",
			ChatModel:      "gpt-4o-mini",
			EmbedDimension: 1536,
			TimeoutSecs:    60,
		},
		Retrieval: RetrievalConfig{
			ChunkSize:        6000,
			ChunkOverlap:     500,
			SimilarityCutoff: 0.7,
			TopK:             10,
		},
		VectorStore: VectorStoreConfig{
			Type:     "jsonfile",
			JSONFile: &JSONFileConfig{Path: "vector_index.json"},
		},
		Server: ServerConfig{
			Addr:      ":5000",
			UploadDir: "uploads",
		},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Namespace == "" {
		cfg.Namespace = "default"
	}
	if cfg.Provider.APIKeyEnv == "" {
		cfg.Provider.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Provider.EmbedModel == "" {
		cfg.Provider.EmbedModel = "text-embedding-3-small"
	}
	if cfg.Provider.ChatModel == "" {
		cfg.Provider.ChatModel = "gpt-4o-mini"
	}
	if cfg.Provider.EmbedDimension == 0 {
		cfg.Provider.EmbedDimension = 1536
	}
	if cfg.Provider.TimeoutSecs == 0 {
		cfg.Provider.TimeoutSecs = 60
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = 6000
	}
	if cfg.Retrieval.ChunkOverlap == 0 {
		cfg.Retrieval.ChunkOverlap = 500
	}
	if cfg.Retrieval.SimilarityCutoff == 0 {
		cfg.Retrieval.SimilarityCutoff = 0.7
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 10
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "jsonfile"
	}
	if cfg.VectorStore.Type == "jsonfile" && cfg.VectorStore.JSONFile == nil {
		cfg.VectorStore.JSONFile = &JSONFileConfig{Path: "vector_index.json"}
	}
	if cfg.VectorStore.Type == "mongo" && cfg.VectorStore.Mongo != nil {
		if cfg.VectorStore.Mongo.URIEnv == "" {
			cfg.VectorStore.Mongo.URIEnv = "MONGO_URI"
		}
		if cfg.VectorStore.Mongo.Database == "" {
			cfg.VectorStore.Mongo.Database = "docqa"
		}
		if cfg.VectorStore.Mongo.Collection == "" {
			cfg.VectorStore.Mongo.Collection = "vectors"
		}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = "uploads"
	}
}
