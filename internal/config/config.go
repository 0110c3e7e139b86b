package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	NATS   NATSConfig
	LLM    LLMConfig
	Chat   ChatConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	// TrustProxy lets rate limiting key on X-Forwarded-For / X-Real-IP.
	// Leave off unless a reverse proxy in front sets them.
	TrustProxy bool
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NATSConfig configures the fact-extraction task queue. An empty URL disables
// NATS; extraction then runs on a detached in-process goroutine.
type NATSConfig struct {
	URL string
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ChatConfig tunes the chat pipeline.
type ChatConfig struct {
	HistoryLimit       int
	FactLimit          int
	EmotionalMemLimit  int
	TranscriptMax      int
	TranscriptTTL      time.Duration
	RateLimitRequests  int
	RateLimitWindowSec int
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:       k.String("server.host"),
			Port:       k.Int("server.port"),
			TrustProxy: k.Bool("server.trust.proxy"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		LLM: LLMConfig{
			APIKey:  k.String("llm.api.key"),
			BaseURL: k.String("llm.base.url"),
			Model:   k.String("llm.model"),
		},
		Chat: ChatConfig{
			HistoryLimit:       k.Int("chat.history.limit"),
			FactLimit:          k.Int("chat.fact.limit"),
			EmotionalMemLimit:  k.Int("chat.emotional.limit"),
			TranscriptMax:      k.Int("chat.transcript.max"),
			RateLimitRequests:  k.Int("chat.ratelimit.requests"),
			RateLimitWindowSec: k.Int("chat.ratelimit.window.sec"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "mindtype"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "mindtype"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "deepseek/deepseek-chat-v3-0324"
	}
	if cfg.Chat.HistoryLimit == 0 {
		cfg.Chat.HistoryLimit = 20
	}
	if cfg.Chat.FactLimit == 0 {
		cfg.Chat.FactLimit = 10
	}
	if cfg.Chat.EmotionalMemLimit == 0 {
		cfg.Chat.EmotionalMemLimit = 5
	}
	if cfg.Chat.TranscriptMax == 0 {
		cfg.Chat.TranscriptMax = 200
	}
	if cfg.Chat.RateLimitRequests == 0 {
		cfg.Chat.RateLimitRequests = 30
	}
	if cfg.Chat.RateLimitWindowSec == 0 {
		cfg.Chat.RateLimitWindowSec = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	llmTimeoutStr := k.String("llm.timeout")
	if llmTimeoutStr == "" {
		llmTimeoutStr = "60s"
	}
	cfg.LLM.Timeout, err = time.ParseDuration(llmTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("parsing llm timeout: %w", err)
	}

	transcriptTTLStr := k.String("chat.transcript.ttl")
	if transcriptTTLStr == "" {
		transcriptTTLStr = "720h"
	}
	cfg.Chat.TranscriptTTL, err = time.ParseDuration(transcriptTTLStr)
	if err != nil {
		return nil, fmt.Errorf("parsing transcript ttl: %w", err)
	}

	return cfg, nil
}
