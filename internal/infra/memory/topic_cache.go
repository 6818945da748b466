package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"quizzer/internal/domain"

	"golang.org/x/sync/singleflight"
)

// QuestionSource fetches topic content from a backing store (flat files, Postgres).
type QuestionSource interface {
	ListTopics(ctx context.Context) ([]string, error)
	GetEntries(ctx context.Context, topic string) ([]domain.Question, error)
}

// TopicCache keeps parsed topics in memory with a TTL to avoid re-reading the source.
type TopicCache struct {
	source QuestionSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedTopic
}

type cachedTopic struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewTopicCache(source QuestionSource, ttl time.Duration) *TopicCache {
	return &TopicCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedTopic),
	}
}

// ListTopics always asks the source so new topic files show up immediately.
func (c *TopicCache) ListTopics(ctx context.Context) ([]string, error) {
	return c.source.ListTopics(ctx)
}

// GetEntries returns a private copy of the topic's questions.
func (c *TopicCache) GetEntries(ctx context.Context, topic string) ([]domain.Question, error) {
	if questions, ok := c.lookup(topic); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(topic, func() (interface{}, error) {
		if questions, ok := c.lookup(topic); ok {
			return questions, nil
		}

		questions, err := c.source.GetEntries(ctx, topic)
		if err != nil {
			return nil, err
		}

		expiresAt := c.clock().Add(c.ttlWithJitter())
		c.mu.Lock()
		c.cache[topic] = cachedTopic{
			questions: questions,
			expiresAt: expiresAt,
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

// Invalidate drops a cached topic, e.g. after its file was rewritten.
func (c *TopicCache) Invalidate(topic string) {
	c.mu.Lock()
	delete(c.cache, topic)
	c.mu.Unlock()
}

func (c *TopicCache) lookup(topic string) ([]domain.Question, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[topic]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return append([]domain.Question(nil), entry.questions...), true
}

// StaticSource is a simple source backed by an in-memory map (useful for tests/demos).
type StaticSource struct {
	topics map[string][]domain.Question
}

func NewStaticSource(topics map[string][]domain.Question) *StaticSource {
	return &StaticSource{topics: topics}
}

func (s *StaticSource) ListTopics(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(s.topics))
	for name := range s.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *StaticSource) GetEntries(_ context.Context, topic string) ([]domain.Question, error) {
	if questions, ok := s.topics[topic]; ok {
		return append([]domain.Question(nil), questions...), nil
	}
	return nil, domain.ErrTopicNotFound
}

func (c *TopicCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
