package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mindtype-app/mindtype-server/internal/api"
	"github.com/mindtype-app/mindtype-server/internal/challenge"
	"github.com/mindtype-app/mindtype-server/internal/chat"
	"github.com/mindtype-app/mindtype-server/internal/companion"
	"github.com/mindtype-app/mindtype-server/internal/config"
	"github.com/mindtype-app/mindtype-server/internal/database"
	"github.com/mindtype-app/mindtype-server/internal/extraction"
	"github.com/mindtype-app/mindtype-server/internal/llm"
	"github.com/mindtype-app/mindtype-server/internal/memory"
	"github.com/mindtype-app/mindtype-server/internal/middleware"
	"github.com/mindtype-app/mindtype-server/internal/mood"
	inats "github.com/mindtype-app/mindtype-server/internal/nats"
	iredis "github.com/mindtype-app/mindtype-server/internal/redis"
	"github.com/mindtype-app/mindtype-server/internal/relationship"
	"github.com/mindtype-app/mindtype-server/internal/server"
)

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	ctx := context.Background()

	// PostgreSQL
	if err := database.RunMigrations(cfg.DB.DSN(), migrationsPath); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Core services
	rels := relationship.NewService(relationship.NewPostgresRepository(pool))
	moods := mood.NewService(mood.NewPostgresRepository(pool))
	analyzer := mood.NewAnalyzer(companion.DefaultLexicons())
	memories := memory.NewService(
		memory.NewPostgresEmotionalRepository(pool),
		memory.NewPostgresFactRepository(pool),
	)
	transcript := memory.NewTranscriptStore(redisClient, cfg.Chat.TranscriptMax, cfg.Chat.TranscriptTTL)
	challenges := challenge.NewService(challenge.NewPostgresRepository(pool), rels, slog.Default())
	completer := llm.New(cfg.LLM)
	extractor := extraction.NewExtractor(completer, memories, slog.Default())

	// Extraction runs through NATS when configured, otherwise on detached
	// goroutines.
	var dispatcher extraction.Dispatcher = extraction.NewGoDispatcher(extractor, slog.Default(), cfg.LLM.Timeout)
	var natsHealthy func() bool

	if cfg.NATS.URL != "" {
		natsClient, err := inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()

		dispatcher = extraction.NewNATSDispatcher(inats.NewPublisher(natsClient.JetStream()), slog.Default())
		natsHealthy = natsClient.Healthy

		consumer := extraction.NewConsumer(extractor, inats.NewConsumerManager(natsClient.JetStream()), slog.Default())
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("extraction consumer stopped", "error", err)
			}
		}()
	} else {
		slog.Warn("NATS_URL not set, extraction runs in-process")
	}

	chatSvc := chat.NewService(chat.ServiceDeps{
		Relationships: rels,
		Moods:         moods,
		Analyzer:      analyzer,
		Memories:      memories,
		Transcript:    transcript,
		Challenges:    challenges,
		Completer:     completer,
		Dispatcher:    dispatcher,
		Config:        cfg.Chat,
		Logger:        slog.Default(),
	})
	handler := chat.NewHandler(chatSvc, rels, moods, challenges, slog.Default())

	// Router
	limiter := middleware.NewRateLimiter(redisClient, cfg.Chat.RateLimitRequests, cfg.Chat.RateLimitWindowSec)
	if cfg.Server.TrustProxy {
		limiter.TrustProxyHeaders()
	}
	router := api.NewRouter(pool, redisClient, api.RouterConfig{
		ChatRateLimiter: limiter.Middleware,
		NATSHealthy:     natsHealthy,
	}, api.HandlerSet{
		Chat:               handler.Chat,
		GetRelationship:    handler.GetRelationship,
		GetMood:            handler.GetMood,
		GetWeeklyChallenge: handler.GetWeeklyChallenge,
		ClaimWeeklyReward:  handler.ClaimWeeklyReward,
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
