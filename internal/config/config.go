package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
}

type GraphConfig struct {
	URI      string `toml:"uri" validate:"required"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type RedisConfig struct {
	Addr     string `toml:"addr" validate:"required"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type LLMConfig struct {
	Provider       string  `toml:"provider" validate:"omitempty,oneof=openai claude gemini ollama"`
	Model          string  `toml:"model"`
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Temperature    float32 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens" validate:"min=0"`
	TimeoutSeconds int     `toml:"timeout_seconds" validate:"min=0"`
}

func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TriggerConfig gates which story lifecycle events enqueue analysis.
type TriggerConfig struct {
	OnCreate      bool `toml:"on_create"`
	OnUpdate      bool `toml:"on_update"`
	OnMediaUpload bool `toml:"on_media_upload"`
	Manual        bool `toml:"manual"`
}

type ImageConfig struct {
	Enabled   bool     `toml:"enabled"`
	MaxImages int      `toml:"max_images" validate:"min=0"`
	Detail    string   `toml:"detail"`
	MimeTypes []string `toml:"mime_types"`
}

// LimitConfig caps the sizes of classifier output fields.
type LimitConfig struct {
	MaxThemes     int `toml:"max_themes" validate:"min=1"`
	MaxEmotions   int `toml:"max_emotions" validate:"min=1"`
	MaxLocations  int `toml:"max_locations" validate:"min=1"`
	MaxEvents     int `toml:"max_events" validate:"min=1"`
	MaxPeople     int `toml:"max_people" validate:"min=1"`
	SummaryLength int `toml:"summary_length" validate:"min=1"`
}

type AnalysisConfig struct {
	Enabled          bool          `toml:"enabled"`
	MinContentLength int           `toml:"min_content_length" validate:"min=0"`
	Triggers         TriggerConfig `toml:"triggers"`
	Images           ImageConfig   `toml:"images"`
	Limits           LimitConfig   `toml:"limits"`
}

type QueueConfig struct {
	MaxAttempts         int `toml:"max_attempts" validate:"min=1"`
	BackoffSeconds      int `toml:"backoff_seconds" validate:"min=1"`
	EnqueueDelaySeconds int `toml:"enqueue_delay_seconds" validate:"min=0"`
	Workers             int `toml:"workers" validate:"min=1"`
	PollIntervalMS      int `toml:"poll_interval_ms" validate:"min=10"`
}

func (c QueueConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffSeconds) * time.Second
}

func (c QueueConfig) EnqueueDelay() time.Duration {
	return time.Duration(c.EnqueueDelaySeconds) * time.Second
}

func (c QueueConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Graph    GraphConfig    `toml:"graph"`
	Redis    RedisConfig    `toml:"redis"`
	LLM      LLMConfig      `toml:"llm"`
	Analysis AnalysisConfig `toml:"analysis"`
	Queue    QueueConfig    `toml:"queue"`
}

// Default returns the configuration used when a section or field is
// absent from the file. Values mirror config/config.toml.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Graph:  GraphConfig{URI: "bolt://localhost:7687"},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			Temperature:    0.3,
			MaxTokens:      1000,
			TimeoutSeconds: 30,
		},
		Analysis: AnalysisConfig{
			Enabled:          true,
			MinContentLength: 50,
			Triggers: TriggerConfig{
				OnCreate:      true,
				OnUpdate:      false,
				OnMediaUpload: true,
				Manual:        true,
			},
			Images: ImageConfig{
				Enabled:   true,
				MaxImages: 3,
				Detail:    "low",
				MimeTypes: []string{"jpeg", "jpg", "png", "webp"},
			},
			Limits: LimitConfig{
				MaxThemes:     3,
				MaxEmotions:   3,
				MaxLocations:  5,
				MaxEvents:     5,
				MaxPeople:     10,
				SummaryLength: 150,
			},
		},
		Queue: QueueConfig{
			MaxAttempts:         3,
			BackoffSeconds:      2,
			EnqueueDelaySeconds: 5,
			Workers:             2,
			PollIntervalMS:      250,
		},
	}
}

// Load reads the TOML file at path on top of defaults, applies env-var
// overrides, and validates the result. Read once at startup; the
// configuration is not hot-reloaded.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	applyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("GRAPH_URI"); v != "" {
		cfg.Graph.URI = v
	}
	if v := os.Getenv("GRAPH_USER"); v != "" {
		cfg.Graph.User = v
	}
	if v := os.Getenv("GRAPH_PASSWORD"); v != "" {
		cfg.Graph.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
}

// placeholderKeys are values the setup docs hand out as examples; treat
// them the same as no credential at all.
var placeholderKeys = []string{
	"your-api-key",
	"your_api_key",
	"changeme",
	"sk-xxx",
	"demo",
}

// HasCredential reports whether a usable model credential is configured.
func (c LLMConfig) HasCredential() bool {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		// Ollama runs locally and needs no key, but only when chosen.
		return strings.EqualFold(c.Provider, "ollama")
	}
	lower := strings.ToLower(key)
	for _, p := range placeholderKeys {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return true
}
