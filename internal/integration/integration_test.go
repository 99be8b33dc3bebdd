package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"german-reading-quiz/internal/app"
	"german-reading-quiz/internal/domain"
	pgstore "german-reading-quiz/internal/infra/postgres"
	pgmigrations "german-reading-quiz/internal/infra/postgres/migrations"
	infraredis "german-reading-quiz/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

const sampleReading = `{
  "title": "Der Hund",
  "text": "Ein <b>Hund</b> läuft.",
  "questions": [{"id": 1, "question": "What runs?", "options": ["Hund", "Katze", "Vogel", "Fisch"], "answer": "Hund"}],
  "vocabulary": [{"id": 6, "word": "laufen", "options": ["to run", "to eat", "to sleep", "to read"], "answer": "to run"}]
}`

func TestReadingRoundEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedReading(t, ctx, pgURL, "a1", "1", sampleReading)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	levels := infraredis.NewLevelRepository(redisClient, pgstore.NewLevelLoader(pool), 5*time.Minute)
	service := app.NewReadingService(levels, pgstore.NewProgressStore(pool), app.NewProgressFeed())

	reading, done, err := service.NextReading(ctx, "a1")
	if err != nil || done {
		t.Fatalf("next reading: done=%v err=%v", done, err)
	}
	if reading.ID != "a1_1" || reading.Title != "Der Hund" {
		t.Fatalf("unexpected reading %+v", reading)
	}

	questions, err := service.Questions(ctx, reading.ID)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 2 || questions[1].Kind != domain.Vocabulary {
		t.Fatalf("unexpected questions %+v", questions)
	}

	results, err := service.Submit(ctx, reading.ID, domain.AnswerMap{1: "Hund", 6: "to sleep"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if results.Score != 1 || results.Total != 2 {
		t.Fatalf("expected 1 out of 2, got %+v", results)
	}

	progress, err := service.Progress(ctx)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress.CompletedReadings) != 1 || len(progress.Performance) != 1 || !progress.Performance[0].Results[1].IsCorrect {
		t.Fatalf("unexpected progress %+v", progress)
	}

	if _, done, err := service.NextReading(ctx, "a1"); err != nil || !done {
		t.Fatalf("expected level completed, got done=%v err=%v", done, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedReading(t *testing.T, ctx context.Context, dsn, level, key, data string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO readings (level, key, data) VALUES (?, ?, ?::jsonb) ON CONFLICT (level, key) DO UPDATE SET data=EXCLUDED.data`,
		level, key, data); err != nil {
		t.Fatalf("insert reading: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
