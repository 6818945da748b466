package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quizzer/internal/app"
	"quizzer/internal/domain"
	"quizzer/internal/infra/file"
	pgsource "quizzer/internal/infra/postgres"
	pgmigrations "quizzer/internal/infra/postgres/migrations"
	infraredis "quizzer/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// alwaysRight picks the correct option for every prompt.
type alwaysRight struct{ results [][2]int }

func (p *alwaysRight) AskQuestion(_ context.Context, prompt domain.Prompt) (bool, error) {
	return prompt.IsCorrect(prompt.CorrectIndex()), nil
}

func (p *alwaysRight) DisplayResults(correct, total int) {
	p.results = append(p.results, [2]int{correct, total})
}

func TestPlayEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	source := pgsource.NewQuestionSource(pool)
	files, err := file.NewQuestionStore(writeQuestionDir(t))
	if err != nil {
		t.Fatalf("question store: %v", err)
	}
	imported, err := source.ImportAll(ctx, files)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported != 1 {
		t.Fatalf("expected 1 imported topic, got %d", imported)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	cache := infraredis.NewTopicCache(redisClient, source, 5*time.Minute, nil)
	guard := infraredis.NewSessionGuard(redisClient, 5*time.Minute)
	history := file.NewHistoryStore(t.TempDir())
	service := app.NewQuizService(cache, history, guard, nil)

	topics, err := service.Topics(ctx)
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	if strings.Join(topics, ",") != "Maths" {
		t.Fatalf("unexpected topics %v", topics)
	}

	presenter := &alwaysRight{}
	result, err := service.Play(ctx, "Maths", "alice", domain.Escalation, presenter)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if result.Correct != 3 || result.Total != 3 {
		t.Fatalf("expected 3/3, got %+v", result)
	}

	n, err := redisClient.LLen(ctx, "quizzer:topic:Maths:questions").Result()
	if err != nil || n != 3 {
		t.Fatalf("expected cached topic with 3 entries, got %d (%v)", n, err)
	}
	if _, err := service.Play(ctx, "Physics", "alice", domain.Random, presenter); !errors.Is(err, domain.ErrTopicNotFound) {
		t.Fatalf("expected topic not found, got %v", err)
	}

	stats := app.NewStatisticsService(history)
	board, err := stats.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].Name != "alice" || board[0].Mean != 1.0 {
		t.Fatalf("unexpected leaderboard %+v", board)
	}
}

func writeQuestionDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := strings.Join([]string{
		"What is 12 squared?|144|124|122|142|EXPERT",
		"What is 2 + 2?|4|3|5|22|NOVICE",
		"What is 7 x 8?|56|54|58|48|INTERMEDIATE",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "Maths.txt"), []byte(body), 0o644); err != nil {
		t.Fatalf("write questions: %v", err)
	}
	return dir
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
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

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
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
