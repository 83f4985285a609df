package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from a YAML string like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

// OllamaConfig holds settings for a local Ollama server.
type OllamaConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// OpenAIConfig holds settings for an OpenAI-compatible API.
// APIKey falls back to the OPENAI_API_KEY environment variable when empty.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// LLMConfig selects and configures the LLM provider.
type LLMConfig struct {
	Provider string       `yaml:"provider"`
	Timeout  Duration     `yaml:"timeout"`
	Ollama   OllamaConfig `yaml:"ollama"`
	OpenAI   OpenAIConfig `yaml:"openai"`
}

// QdrantConfig holds settings for a Qdrant instance (REST port).
type QdrantConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Collection   string `yaml:"collection"`
	EmbeddingDim int    `yaml:"embedding_dim"`
}

// RedisConfig holds settings for a Redis 8 search index.
type RedisConfig struct {
	Addrs      []string `yaml:"addrs"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	Collection string   `yaml:"collection"`
}

// VectorDBConfig selects and configures the vector database.
type VectorDBConfig struct {
	Type    string       `yaml:"type"`
	Timeout Duration     `yaml:"timeout"`
	Qdrant  QdrantConfig `yaml:"qdrant"`
	Redis   RedisConfig  `yaml:"redis"`
}

// ProbesConfig holds scheduling settings shared by all probes.
type ProbesConfig struct {
	Interval Duration `yaml:"interval"`
}

// WebhookConfig holds alert webhook settings.
type WebhookConfig struct {
	URL      string   `yaml:"url"`
	Cooldown Duration `yaml:"cooldown"`
}

// AlertsConfig holds all alert configuration.
type AlertsConfig struct {
	Webhook WebhookConfig `yaml:"webhook"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Config is the root application configuration.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	VectorDB VectorDBConfig `yaml:"vectordb"`
	Probes   ProbesConfig   `yaml:"probes"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
}

var validLLMProviders = map[string]bool{
	"ollama": true,
	"openai": true,
}

var validVectorDBTypes = map[string]bool{
	"qdrant": true,
	"redis":  true,
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads, parses, and validates the config file at path.
// A missing file is not an error: the defaults are returned so the harness
// runs against local Ollama and Qdrant out of the box.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)

	if !validLLMProviders[cfg.LLM.Provider] {
		return nil, fmt.Errorf("llm: invalid provider %q (must be ollama or openai)", cfg.LLM.Provider)
	}
	if !validVectorDBTypes[cfg.VectorDB.Type] {
		return nil, fmt.Errorf("vectordb: invalid type %q (must be qdrant or redis)", cfg.VectorDB.Type)
	}
	if cfg.VectorDB.Qdrant.EmbeddingDim < 0 {
		return nil, fmt.Errorf("vectordb: embedding_dim must be positive, got %d", cfg.VectorDB.Qdrant.EmbeddingDim)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
	}
	if cfg.LLM.Timeout.Duration == 0 {
		cfg.LLM.Timeout = Duration{30 * time.Second}
	}
	if cfg.LLM.Ollama.BaseURL == "" {
		cfg.LLM.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.LLM.Ollama.Model == "" {
		cfg.LLM.Ollama.Model = "llama3.1:70b"
	}
	if cfg.LLM.Ollama.Temperature == 0 {
		cfg.LLM.Ollama.Temperature = 0.2
	}
	if cfg.LLM.OpenAI.BaseURL == "" {
		cfg.LLM.OpenAI.BaseURL = "https://api.proxyapi.ru/openai/v1"
	}
	if cfg.LLM.OpenAI.Model == "" {
		cfg.LLM.OpenAI.Model = "gpt-4o"
	}
	if cfg.LLM.OpenAI.APIKey == "" {
		cfg.LLM.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if cfg.VectorDB.Type == "" {
		cfg.VectorDB.Type = "qdrant"
	}
	if cfg.VectorDB.Timeout.Duration == 0 {
		cfg.VectorDB.Timeout = Duration{10 * time.Second}
	}
	if cfg.VectorDB.Qdrant.Host == "" {
		cfg.VectorDB.Qdrant.Host = "localhost"
	}
	if cfg.VectorDB.Qdrant.Port == 0 {
		cfg.VectorDB.Qdrant.Port = 6333
	}
	if cfg.VectorDB.Qdrant.Collection == "" {
		cfg.VectorDB.Qdrant.Collection = "kb_articles"
	}
	if cfg.VectorDB.Qdrant.EmbeddingDim == 0 {
		cfg.VectorDB.Qdrant.EmbeddingDim = 768
	}
	if len(cfg.VectorDB.Redis.Addrs) == 0 {
		cfg.VectorDB.Redis.Addrs = []string{"localhost:6379"}
	}
	if cfg.VectorDB.Redis.Collection == "" {
		cfg.VectorDB.Redis.Collection = "kb_articles"
	}

	if cfg.Probes.Interval.Duration == 0 {
		cfg.Probes.Interval = Duration{60 * time.Second}
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "kbprobe.db"
	}
}
