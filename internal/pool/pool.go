// Package pool draws the question subset for one session attempt.
package pool

import (
	"math/rand"

	"github.com/sqlschool/examkit/internal/quizset"
)

// Shuffler permutes n elements via swap. Production code uses
// rand.Shuffle; tests inject a deterministic one.
type Shuffler func(n int, swap func(i, j int))

// New returns a Shuffler backed by the given source.
func New(src rand.Source) Shuffler {
	r := rand.New(src)
	return r.Shuffle
}

// Select draws an attempt's question sequence. Required ids are always
// included (first match, removed from the remaining pool); the rest is
// filled from a shuffled remainder up to count, then the whole selection
// is shuffled again so required questions don't cluster at the front.
// Each selected question's options are shuffled independently. A pool
// shorter than count yields whatever is available; count <= |required|
// yields required questions only.
func Select(questions []quizset.Question, requiredIDs []string, count int, shuffle Shuffler) []quizset.Question {
	remainder := make([]quizset.Question, len(questions))
	copy(remainder, questions)

	required := make([]quizset.Question, 0, len(requiredIDs))
	for _, id := range requiredIDs {
		for i := range remainder {
			if remainder[i].ID == id {
				required = append(required, remainder[i])
				remainder = append(remainder[:i], remainder[i+1:]...)
				break
			}
		}
	}

	shuffle(len(remainder), func(i, j int) {
		remainder[i], remainder[j] = remainder[j], remainder[i]
	})

	take := count - len(required)
	if take < 0 {
		take = 0
	}
	if take > len(remainder) {
		take = len(remainder)
	}

	selected := make([]quizset.Question, 0, len(required)+take)
	selected = append(selected, required...)
	selected = append(selected, remainder[:take]...)

	shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	for i := range selected {
		opts := make([]quizset.Option, len(selected[i].Options))
		copy(opts, selected[i].Options)
		shuffle(len(opts), func(a, b int) {
			opts[a], opts[b] = opts[b], opts[a]
		})
		selected[i].Options = opts
	}
	return selected
}

// MaxScore folds the point values of a selection.
func MaxScore(selected []quizset.Question) float64 {
	var total float64
	for i := range selected {
		total += selected[i].Points
	}
	return total
}
