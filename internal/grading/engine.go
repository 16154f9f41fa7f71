// Package grading scores answers for one session attempt. Strategies
// are routed by question kind; grading never returns an error to the
// caller, since every failure inside a strategy grades as incorrect.
package grading

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sqlschool/examkit/internal/quizset"
)

// Answer is a student's current answer to one question: selected option
// ids for multiple choice, query text for SQL.
type Answer struct {
	OptionIDs []string `json:"option_ids,omitempty"`
	Query     string   `json:"query,omitempty"`
}

// Result is the outcome of grading a single question.
type Result struct {
	Correct   bool
	Points    float64
	MaxPoints float64
}

// Strategy grades one question kind.
type Strategy interface {
	Grade(ctx context.Context, q quizset.Question, ans Answer) bool
}

// Grader routes by question kind to the correct Strategy.
type Grader struct {
	strategies map[quizset.Kind]Strategy
	log        zerolog.Logger
}

// NewGrader installs the built-in strategies. The setup statements are
// the set-level ones, run before every SQL question ahead of any
// per-question setup.
func NewGrader(setup []string, log zerolog.Logger) *Grader {
	return &Grader{
		strategies: map[quizset.Kind]Strategy{
			quizset.KindMultipleChoice: choiceStrategy{},
			quizset.KindSQLSelect:      queryStrategy{grader: NewQueryGrader(log), setup: setup},
		},
		log: log.With().Str("component", "grader").Logger(),
	}
}

func (g *Grader) Grade(ctx context.Context, q quizset.Question, ans Answer) Result {
	res := Result{MaxPoints: q.Points}
	s, ok := g.strategies[q.Kind]
	if !ok {
		g.log.Warn().Str("question", q.ID).Str("kind", string(q.Kind)).Msg("no strategy for question kind")
		return res
	}
	if s.Grade(ctx, q, ans) {
		res.Correct = true
		res.Points = q.Points
	}
	return res
}

type choiceStrategy struct{}

func (choiceStrategy) Grade(_ context.Context, q quizset.Question, ans Answer) bool {
	// missing or malformed selection is simply incorrect
	if len(ans.OptionIDs) == 0 {
		return false
	}
	return AnswerDigest(ans.OptionIDs) == q.CorrectHash
}

type queryStrategy struct {
	grader *QueryGrader
	setup  []string
}

func (s queryStrategy) Grade(ctx context.Context, q quizset.Question, ans Answer) bool {
	setup := make([]string, 0, len(s.setup)+len(q.Setup))
	setup = append(setup, s.setup...)
	setup = append(setup, q.Setup...)
	return s.grader.Grade(ctx, ans.Query, q.ReferenceSQL, setup, q.OrderSensitive)
}
