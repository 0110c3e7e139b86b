//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mindtype-app/mindtype-server/internal/api"
	"github.com/mindtype-app/mindtype-server/internal/challenge"
	"github.com/mindtype-app/mindtype-server/internal/chat"
	"github.com/mindtype-app/mindtype-server/internal/companion"
	"github.com/mindtype-app/mindtype-server/internal/config"
	"github.com/mindtype-app/mindtype-server/internal/extraction"
	"github.com/mindtype-app/mindtype-server/internal/llm"
	"github.com/mindtype-app/mindtype-server/internal/memory"
	"github.com/mindtype-app/mindtype-server/internal/mood"
	inats "github.com/mindtype-app/mindtype-server/internal/nats"
	"github.com/mindtype-app/mindtype-server/internal/relationship"
)

// StubCompleter replaces the upstream LLM so integration tests exercise the
// storage and HTTP layers deterministically.
type StubCompleter struct {
	mu      sync.Mutex
	Replies map[string]string // op -> canned reply
	Calls   []string          // ops in call order
}

func (s *StubCompleter) Complete(_ context.Context, op string, _ []llm.Message, _ int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, op)
	if reply, ok := s.Replies[op]; ok {
		return reply, nil
	}
	return "stub reply", nil
}

type TestEnv struct {
	Pool        *pgxpool.Pool
	RedisClient *redis.Client
	Server      *httptest.Server
	Completer   *StubCompleter
}

var testEnv *TestEnv

func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "mindtype_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	pgHost, _ := pgContainer.Host(ctx)
	pgPort, _ := pgContainer.MappedPort(ctx, "5432")

	// Start Redis container
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting redis container: %v", err)
	}
	t.Cleanup(func() { redisContainer.Terminate(ctx) })

	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, "6379")

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/mindtype_test?sslmode=disable", pgHost, pgPort.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	// Run migrations
	m, err := migrate.New(
		fmt.Sprintf("file://%s", getMigrationsPath()),
		dsn,
	)
	if err != nil {
		t.Fatalf("creating migrator: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("running migrations: %v", err)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	t.Cleanup(func() { redisClient.Close() })

	// Setup services
	completer := &StubCompleter{Replies: map[string]string{
		"solo":       "Good to hear from you.",
		"group":      "Count me in.",
		"extraction": "[]",
	}}

	rels := relationship.NewService(relationship.NewPostgresRepository(pool))
	moods := mood.NewService(mood.NewPostgresRepository(pool))
	memories := memory.NewService(
		memory.NewPostgresEmotionalRepository(pool),
		memory.NewPostgresFactRepository(pool),
	)
	transcript := memory.NewTranscriptStore(redisClient, 200, time.Hour)
	challenges := challenge.NewService(challenge.NewPostgresRepository(pool), rels, slog.Default())
	extractor := extraction.NewExtractor(completer, memories, slog.Default())
	dispatcher := &syncDispatcher{extractor: extractor}

	chatSvc := chat.NewService(chat.ServiceDeps{
		Relationships: rels,
		Moods:         moods,
		Analyzer:      mood.NewAnalyzer(companion.DefaultLexicons()),
		Memories:      memories,
		Transcript:    transcript,
		Challenges:    challenges,
		Completer:     completer,
		Dispatcher:    dispatcher,
		Config: config.ChatConfig{
			HistoryLimit:      20,
			FactLimit:         10,
			EmotionalMemLimit: 5,
		},
		Logger: slog.Default(),
	})
	handler := chat.NewHandler(chatSvc, rels, moods, challenges, slog.Default())

	router := api.NewRouter(pool, redisClient, api.RouterConfig{}, api.HandlerSet{
		Chat:               handler.Chat,
		GetRelationship:    handler.GetRelationship,
		GetMood:            handler.GetMood,
		GetWeeklyChallenge: handler.GetWeeklyChallenge,
		ClaimWeeklyReward:  handler.ClaimWeeklyReward,
	})

	server := httptest.NewServer(router)
	t.Cleanup(func() { server.Close() })

	testEnv = &TestEnv{
		Pool:        pool,
		RedisClient: redisClient,
		Server:      server,
		Completer:   completer,
	}

	return testEnv
}

// syncDispatcher runs extraction inline so tests observe its writes without
// polling.
type syncDispatcher struct {
	extractor *extraction.Extractor
}

func (d *syncDispatcher) Dispatch(ctx context.Context, task inats.ExtractionTask) {
	_ = d.extractor.Extract(ctx, task.DeviceID, task.CompanionType, task.Message)
}

func getMigrationsPath() string {
	paths := []string{
		"../../migrations",
		"../../../migrations",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	log.Fatal("migrations directory not found")
	return ""
}

// Helper functions

func DoRequest(t *testing.T, env *TestEnv, method, path string, body any) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, bodyReader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("doing request: %v", err)
	}
	return resp
}

func ParseResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	return result
}

func ChatAgent(name, typ string) map[string]any {
	return map[string]any{
		"type":       typ,
		"gender":     "female",
		"name":       name,
		"role":       "companion",
		"ambition":   "see the world",
		"desires":    []string{"a quiet evening"},
		"activities": []string{"reading"},
	}
}
