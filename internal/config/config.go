package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig   `json:"basic_config" toml:"basic_config" yaml:"basic_config"`
	Gemini      GeminiConfig  `json:"gemini" toml:"gemini" yaml:"gemini"`
	Models      ModelConfig   `json:"models" toml:"models" yaml:"models"`
	Session     SessionConfig `json:"session" toml:"session" yaml:"session"`
	Redis       RedisConfig   `json:"redis" toml:"redis" yaml:"redis"`
}

type BasicConfig struct {
	ServerAddress string `json:"server_address" toml:"server_address" yaml:"server_address"`
	GinMode       string `json:"gin_mode" toml:"gin_mode" yaml:"gin_mode"`
	MaxUploadMB   int    `json:"max_upload_mb" toml:"max_upload_mb" yaml:"max_upload_mb"`

	// RequestTimeoutSeconds bounds a single collaborator call; 0 waits indefinitely.
	RequestTimeoutSeconds int `json:"request_timeout_seconds" toml:"request_timeout_seconds" yaml:"request_timeout_seconds"`
}

type GeminiConfig struct {
	APIKey   string `json:"api_key" toml:"api_key" yaml:"api_key"`
	Backend  string `json:"backend" toml:"backend" yaml:"backend"`
	Project  string `json:"project" toml:"project" yaml:"project"`
	Location string `json:"location" toml:"location" yaml:"location"`
}

// ModelConfig picks the model id used by each feature.
type ModelConfig struct {
	Timeline            string `json:"timeline" toml:"timeline" yaml:"timeline"`
	Exam                string `json:"exam" toml:"exam" yaml:"exam"`
	Search              string `json:"search" toml:"search" yaml:"search"`
	Image               string `json:"image" toml:"image" yaml:"image"`
	TimelineThinkBudget int32  `json:"timeline_thinking_budget" toml:"timeline_thinking_budget" yaml:"timeline_thinking_budget"`
	ExamThinkBudget     int32  `json:"exam_thinking_budget" toml:"exam_thinking_budget" yaml:"exam_thinking_budget"`
}

type SessionConfig struct {
	// Store is "memory" or "redis".
	Store      string `json:"store" toml:"store" yaml:"store"`
	CookieName string `json:"cookie_name" toml:"cookie_name" yaml:"cookie_name"`
	TTLMinutes int    `json:"ttl_minutes" toml:"ttl_minutes" yaml:"ttl_minutes"`
}

type RedisConfig struct {
	Host     string `json:"host" toml:"host" yaml:"host"`
	Port     int    `json:"port" toml:"port" yaml:"port"`
	Username string `json:"username" toml:"username" yaml:"username"`
	Password string `json:"password" toml:"password" yaml:"password"`
	DB       int    `json:"db" toml:"db" yaml:"db"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		BasicConfig: BasicConfig{
			ServerAddress: ":8090",
			GinMode:       "debug",
			MaxUploadMB:   20,
		},
		Gemini: GeminiConfig{
			Backend: "gemini",
		},
		Models: ModelConfig{
			Timeline:            "gemini-3-flash-preview",
			Exam:                "gemini-3-pro-preview",
			Search:              "gemini-3-flash-preview",
			Image:               "gemini-2.5-flash-image",
			TimelineThinkBudget: 1024,
			ExamThinkBudget:     2048,
		},
		Session: SessionConfig{
			Store:      "memory",
			CookieName: "study_session",
			TTLMinutes: 12 * 60,
		},
		Redis: RedisConfig{
			Host: "127.0.0.1",
			Port: 6379,
		},
	}
}

// Load reads configuration from path (defaults to config.json). The format
// follows the file extension: .json, .toml, .yaml/.yml. A missing file
// yields the defaults; environment variables override either.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}
	cfg := Default()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	switch {
	case err == nil:
		if err := decode(absPath, data, cfg); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}

	overrideByEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode toml config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Session.Store) {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported session store: %s", c.Session.Store)
	}
	switch strings.ToLower(c.Gemini.Backend) {
	case "gemini", "":
	case "vertex":
		if c.Gemini.Project == "" || c.Gemini.Location == "" {
			return fmt.Errorf("vertex backend requires project and location")
		}
	default:
		return fmt.Errorf("unsupported gemini backend: %s", c.Gemini.Backend)
	}
	switch c.BasicConfig.GinMode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported gin mode: %s", c.BasicConfig.GinMode)
	}
	if c.BasicConfig.MaxUploadMB <= 0 {
		c.BasicConfig.MaxUploadMB = 20
	}
	return nil
}

// MaxUploadBytes is the transport cap for a single multipart upload.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.BasicConfig.MaxUploadMB) << 20
}

func overrideByEnv(cfg *Config) {
	cfg.BasicConfig.ServerAddress = getEnv("STUDYBUDDY_ADDR", cfg.BasicConfig.ServerAddress)
	cfg.BasicConfig.GinMode = getEnv("GIN_MODE", cfg.BasicConfig.GinMode)
	cfg.BasicConfig.MaxUploadMB = getEnvAsInt("STUDYBUDDY_MAX_UPLOAD_MB", cfg.BasicConfig.MaxUploadMB)
	cfg.BasicConfig.RequestTimeoutSeconds = getEnvAsInt("STUDYBUDDY_REQUEST_TIMEOUT", cfg.BasicConfig.RequestTimeoutSeconds)

	cfg.Gemini.APIKey = getEnv("GEMINI_API_KEY", getEnv("API_KEY", cfg.Gemini.APIKey))
	cfg.Gemini.Backend = getEnv("GEMINI_BACKEND", cfg.Gemini.Backend)
	cfg.Gemini.Project = getEnv("GOOGLE_CLOUD_PROJECT", cfg.Gemini.Project)
	cfg.Gemini.Location = getEnv("GOOGLE_CLOUD_LOCATION", cfg.Gemini.Location)

	cfg.Session.Store = getEnv("STUDYBUDDY_SESSION_STORE", cfg.Session.Store)
	cfg.Session.TTLMinutes = getEnvAsInt("STUDYBUDDY_SESSION_TTL", cfg.Session.TTLMinutes)

	if addr, ok := os.LookupEnv("REDIS_ADDR"); ok && addr != "" {
		host, port, found := strings.Cut(addr, ":")
		cfg.Redis.Host = host
		if found {
			if p, err := strconv.Atoi(port); err == nil {
				cfg.Redis.Port = p
			}
		}
	}
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
