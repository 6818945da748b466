package app

import (
	"fmt"
	"math/rand"
	"sort"

	"quizzer/internal/domain"
)

// orderQuestions returns a reordered copy of questions. Sorts are stable so ties keep
// their original relative order.
func orderQuestions(ordering domain.Ordering, questions []domain.Question, record *domain.UserRecord, rnd *rand.Rand) ([]domain.Question, error) {
	out := append([]domain.Question(nil), questions...)
	switch ordering {
	case domain.Random:
		rnd.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	case domain.Escalation:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Difficulty < out[j].Difficulty
		})
	case domain.Redemption:
		// Unseen questions count as 0 and sink to the end with the never-missed ones.
		sort.SliceStable(out, func(i, j int) bool {
			return record.WrongCount(out[i].Text) > record.WrongCount(out[j].Text)
		})
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownOrdering, ordering)
	}
	return out, nil
}
