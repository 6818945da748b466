package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"quizzer/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionSource fetches topic content from a backing store (flat files, Postgres).
type QuestionSource interface {
	ListTopics(ctx context.Context) ([]string, error)
	GetEntries(ctx context.Context, topic string) ([]domain.Question, error)
}

// TopicCache caches parsed topics in Redis and falls back to the source on a miss.
// Each topic is a list of JSON-encoded questions in file order:
// RPUSH quizzer:topic:{topic}:questions {question...}
type TopicCache struct {
	client *redis.Client
	source QuestionSource
	ttl    time.Duration
	logger *slog.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewTopicCache(client *redis.Client, source QuestionSource, ttl time.Duration, logger *slog.Logger) *TopicCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TopicCache{
		client: client,
		source: source,
		ttl:    ttl,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *TopicCache) ListTopics(ctx context.Context) ([]string, error) {
	return c.source.ListTopics(ctx)
}

func (c *TopicCache) GetEntries(ctx context.Context, topic string) ([]domain.Question, error) {
	key := c.questionsKey(topic)

	if questions, ok := c.fromCache(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(topic, func() (interface{}, error) {
		// Re-check cache in case another caller filled it.
		if questions, ok := c.fromCache(ctx, key); ok {
			return questions, nil
		}

		questions, err := c.source.GetEntries(ctx, topic)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, questions)
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

// Invalidate removes a cached topic.
func (c *TopicCache) Invalidate(ctx context.Context, topic string) error {
	return c.client.Del(ctx, c.questionsKey(topic)).Err()
}

func (c *TopicCache) questionsKey(topic string) string {
	return "quizzer:topic:" + topic + ":questions"
}

func (c *TopicCache) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := c.client.LRange(ctx, key, 0, -1).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	questions := make([]domain.Question, 0, len(raw))
	for _, item := range raw {
		var q domain.Question
		if err := json.Unmarshal([]byte(item), &q); err != nil {
			c.logger.Warn("discarding corrupt cached topic", "key", key, "error", err)
			_ = c.client.Del(ctx, key).Err()
			return nil, false
		}
		questions = append(questions, q)
	}
	return questions, true
}

// store is best effort; a failed write only costs a reload next time.
func (c *TopicCache) store(ctx context.Context, key string, questions []domain.Question) {
	if len(questions) == 0 {
		return
	}
	values := make([]interface{}, 0, len(questions))
	for _, q := range questions {
		data, err := json.Marshal(q)
		if err != nil {
			return
		}
		values = append(values, data)
	}

	ttl := c.ttlWithJitter()
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, values...)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("topic cache write failed", "key", key, "error", err)
	}
}

func (c *TopicCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
