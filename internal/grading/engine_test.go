package grading

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/sqlschool/examkit/internal/quizset"
)

func TestGrader_MultipleChoice(t *testing.T) {
	g := NewGrader(nil, zerolog.Nop())
	q := quizset.Question{
		ID: "q1", Kind: quizset.KindMultipleChoice, Prompt: "p", Points: 10,
		Options:     []quizset.Option{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}, {ID: "c", Text: "C"}},
		CorrectHash: AnswerDigest([]string{"a", "b"}),
	}

	res := g.Grade(context.Background(), q, Answer{OptionIDs: []string{"b", "a"}})
	assert.True(t, res.Correct)
	assert.InDelta(t, 10, res.Points, 1e-9)
	assert.InDelta(t, 10, res.MaxPoints, 1e-9)

	res = g.Grade(context.Background(), q, Answer{OptionIDs: []string{"a"}})
	assert.False(t, res.Correct)
	assert.Zero(t, res.Points)

	// missing answer is incorrect, never an error
	res = g.Grade(context.Background(), q, Answer{})
	assert.False(t, res.Correct)
}

func TestGrader_SQLSelect(t *testing.T) {
	g := NewGrader([]string{`CREATE TABLE t (x INTEGER)`}, zerolog.Nop())
	q := quizset.Question{
		ID: "q2", Kind: quizset.KindSQLSelect, Prompt: "p", Points: 15,
		ReferenceSQL: `SELECT x FROM t ORDER BY x`,
		Setup:        []string{`INSERT INTO t VALUES (2), (1)`},
	}

	res := g.Grade(context.Background(), q, Answer{Query: `SELECT x FROM t ORDER BY x;`})
	assert.True(t, res.Correct)
	assert.InDelta(t, 15, res.Points, 1e-9)

	res = g.Grade(context.Background(), q, Answer{Query: ""})
	assert.False(t, res.Correct)
}

func TestGrader_UnknownKind(t *testing.T) {
	g := NewGrader(nil, zerolog.Nop())
	q := quizset.Question{ID: "q3", Kind: quizset.Kind("essay"), Points: 5}
	res := g.Grade(context.Background(), q, Answer{})
	assert.False(t, res.Correct)
	assert.InDelta(t, 5, res.MaxPoints, 1e-9)
}
