package redis

import (
	"context"
	"testing"
	"time"

	"quizzer/internal/domain"
	"quizzer/internal/infra/memory"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestTopicCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	source := &countingSource{
		QuestionSource: memory.NewStaticSource(map[string][]domain.Question{
			"Maths": sampleQuestions(),
		}),
	}
	cache := NewTopicCache(client, source, time.Minute, nil)

	first, err := cache.GetEntries(context.Background(), "Maths")
	if err != nil {
		t.Fatalf("get entries: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected source called once, got %d", source.calls)
	}
	if !mr.Exists("quizzer:topic:Maths:questions") {
		t.Fatalf("expected redis list to be written")
	}

	// Second call should hit cache, source not incremented.
	second, _ := cache.GetEntries(context.Background(), "Maths")
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls=%d", source.calls)
	}
	if len(second) != len(first) {
		t.Fatalf("expected %d questions from cache, got %d", len(first), len(second))
	}
	for i := range first {
		if second[i] != first[i] {
			t.Fatalf("question %d changed through cache: %+v vs %+v", i, second[i], first[i])
		}
	}
}

func TestTopicCacheExpiresAndInvalidates(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := &countingSource{
		QuestionSource: memory.NewStaticSource(map[string][]domain.Question{
			"Maths": sampleQuestions(),
		}),
	}
	cache := NewTopicCache(newClient(mr), source, time.Minute, nil)
	ctx := context.Background()

	_, _ = cache.GetEntries(ctx, "Maths")
	mr.FastForward(2 * time.Minute)
	_, _ = cache.GetEntries(ctx, "Maths")
	if source.calls != 2 {
		t.Fatalf("expected reload after expiry, source calls=%d", source.calls)
	}

	if err := cache.Invalidate(ctx, "Maths"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.GetEntries(ctx, "Maths")
	if source.calls != 3 {
		t.Fatalf("expected reload after invalidate, source calls=%d", source.calls)
	}
}

func TestTopicCacheRecoversFromCorruptEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	if _, err := mr.Push("quizzer:topic:Maths:questions", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	source := &countingSource{
		QuestionSource: memory.NewStaticSource(map[string][]domain.Question{
			"Maths": sampleQuestions(),
		}),
	}
	cache := NewTopicCache(newClient(mr), source, time.Minute, nil)

	questions, err := cache.GetEntries(context.Background(), "Maths")
	if err != nil {
		t.Fatalf("get entries: %v", err)
	}
	if source.calls != 1 || len(questions) != 2 {
		t.Fatalf("expected reload from source, calls=%d len=%d", source.calls, len(questions))
	}
}

type countingSource struct {
	memory.QuestionSource
	calls int
}

func (s *countingSource) GetEntries(ctx context.Context, topic string) ([]domain.Question, error) {
	s.calls++
	return s.QuestionSource.GetEntries(ctx, topic)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Text:          "What is 2 + 2?",
			CorrectAnswer: "4",
			WrongAnswers:  [3]string{"3", "5", "22"},
			Difficulty:    domain.Novice,
		},
		{
			Text:          "What is 7 * 8?",
			CorrectAnswer: "56",
			WrongAnswers:  [3]string{"54", "58", "64"},
			Difficulty:    domain.Intermediate,
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
