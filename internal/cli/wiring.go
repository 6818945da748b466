package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"quizzer/internal/app"
	"quizzer/internal/config"
	"quizzer/internal/infra/file"
	"quizzer/internal/infra/memory"
	pgsource "quizzer/internal/infra/postgres"
	rediscache "quizzer/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// environment holds the collaborators built from configuration for one command run.
type environment struct {
	cfg     config.Config
	logger  *slog.Logger
	history *file.HistoryStore
	quiz    *app.QuizService
	stats   *app.StatisticsService
	closers []func()
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.SlogLevel(cfg.Log.Level)}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newEnvironment picks the question source (Postgres when configured, flat files
// otherwise) and the cache/guard pair (Redis when configured, in-process otherwise).
// History always lives in flat files.
func newEnvironment(ctx context.Context, configPath string, logOut io.Writer) (*environment, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	env := &environment{
		cfg:     cfg,
		logger:  newLogger(cfg, logOut),
		history: file.NewHistoryStore(cfg.Data.HistoryDir),
	}

	var source memory.QuestionSource
	if cfg.Postgres.URL != "" {
		pool, err := openPostgres(ctx, cfg, env.logger)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, pool.Close)
		source = pgsource.NewQuestionSource(pool)
	} else {
		store, err := file.NewQuestionStore(cfg.Data.QuestionsDir)
		if err != nil {
			return nil, err
		}
		source = store
	}

	var (
		questions app.QuestionSource
		guard     app.SessionGuard
	)
	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		env.closers = append(env.closers, func() { _ = client.Close() })
		redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		questions = rediscache.NewTopicCache(client, source, cacheTTL, env.logger)
		guard = rediscache.NewSessionGuard(client, redisTTL)
	} else {
		questions = memory.NewTopicCache(source, cacheTTL)
		guard = memory.NewSessionGuard()
	}

	env.quiz = app.NewQuizService(questions, env.history, guard, env.logger)
	env.stats = app.NewStatisticsService(env.history)
	return env, nil
}

// openPostgres applies migrations and returns a connection pool.
func openPostgres(ctx context.Context, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
		return nil, err
	}
	return pgxpool.Connect(ctx, cfg.Postgres.URL)
}

func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}
