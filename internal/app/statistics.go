package app

import (
	"context"
	"fmt"
	"math"
	"sort"

	"quizzer/internal/domain"
)

// GetStatistic derives stat from a record snapshot. An empty record yields 0.
//
// Correct counts are rounds minus wrong count and are not clamped, so a wrong count
// above the number of rounds yields a negative contribution. MEAN and MEDIAN divide by
// zero (NaN or Inf) when a record exists without any rounds or questions.
func GetStatistic(record *domain.UserRecord, stat domain.Statistic) float64 {
	if record == nil || record.IsEmpty() {
		return 0
	}
	rounds := record.Rounds()
	corrects := make([]int, 0, len(record.WrongCounts))
	totalCorrect := 0
	for _, wrong := range record.QuestionCounts() {
		c := rounds - wrong
		corrects = append(corrects, c)
		totalCorrect += c
	}
	totalAnswered := rounds * len(corrects)

	switch stat {
	case domain.Mean:
		return float64(totalCorrect) / float64(totalAnswered)
	case domain.Median:
		if len(corrects) == 0 {
			return math.NaN()
		}
		// Index floor(N/2) of the ascending list; even N is not averaged.
		sort.Ints(corrects)
		return float64(corrects[len(corrects)/2]) / float64(rounds)
	case domain.TotalCorrect:
		return float64(totalCorrect)
	case domain.TotalAnswered:
		return float64(totalAnswered)
	default:
		return 0
	}
}

// StandardDeviation is the population standard deviation of values.
func StandardDeviation(values []float64) float64 {
	n := float64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mu := sum / n
	sq := 0.0
	for _, v := range values {
		sq += (v - mu) * (v - mu)
	}
	return math.Sqrt(sq / n)
}

// UserStatistics is every statistic of one user.
type UserStatistics struct {
	Name   string
	Rounds int
	Values map[domain.Statistic]float64
}

// StatisticsService aggregates over persisted user records. It never writes.
type StatisticsService struct {
	history HistoryRepository
}

func NewStatisticsService(history HistoryRepository) *StatisticsService {
	return &StatisticsService{history: history}
}

// ForUser computes all statistics for one user.
func (s *StatisticsService) ForUser(ctx context.Context, name string) (UserStatistics, error) {
	record, err := s.history.Load(ctx, name)
	if err != nil {
		return UserStatistics{}, fmt.Errorf("load history for %q: %w", name, err)
	}
	values := make(map[domain.Statistic]float64, len(domain.Statistics))
	for _, stat := range domain.Statistics {
		values[stat] = GetStatistic(record, stat)
	}
	return UserStatistics{Name: name, Rounds: record.Rounds(), Values: values}, nil
}

// Means returns every persisted user's MEAN, in repository listing order.
func (s *StatisticsService) Means(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	names, err := s.history.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(names))
	for _, name := range names {
		record, err := s.history.Load(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load history for %q: %w", name, err)
		}
		entries = append(entries, domain.LeaderboardEntry{
			Name: name,
			Mean: GetStatistic(record, domain.Mean),
		})
	}
	return entries, nil
}

// StandardDeviation is the population standard deviation of all users' MEAN.
func (s *StatisticsService) StandardDeviation(ctx context.Context) (float64, error) {
	entries, err := s.Means(ctx)
	if err != nil {
		return 0, err
	}
	means := make([]float64, len(entries))
	for i, e := range entries {
		means[i] = e.Mean
	}
	return StandardDeviation(means), nil
}

// Leaderboard ranks all users by MEAN descending. Ties come out in no particular order;
// users whose MEAN is undefined rank last.
func (s *StatisticsService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	entries, err := s.Means(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Mean, entries[j].Mean
		if math.IsNaN(a) || math.IsNaN(b) {
			return !math.IsNaN(a) && math.IsNaN(b)
		}
		return a > b
	})
	return entries, nil
}
