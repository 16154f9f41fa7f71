package grading

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var numbersSetup = []string{
	`CREATE TABLE numbers (n INTEGER, label TEXT)`,
	`INSERT INTO numbers VALUES (1, 'one'), (2, 'two'), (3, 'three')`,
}

func newTestQueryGrader() *QueryGrader {
	return NewQueryGrader(zerolog.Nop())
}

func TestGrade_IdenticalQuery(t *testing.T) {
	g := newTestQueryGrader()
	ref := `SELECT n, label FROM numbers ORDER BY n`
	for _, ordered := range []bool{false, true} {
		assert.True(t, g.Grade(context.Background(), ref, ref, numbersSetup, ordered), "ordered=%v", ordered)
	}
}

func TestGrade_TrailingTerminatorStripped(t *testing.T) {
	g := newTestQueryGrader()
	ref := `SELECT n FROM numbers ORDER BY n`
	assert.True(t, g.Grade(context.Background(), "SELECT n FROM numbers ORDER BY n;", ref+";", numbersSetup, true))
}

func TestGrade_EmptyStudent(t *testing.T) {
	g := newTestQueryGrader()
	assert.False(t, g.Grade(context.Background(), "", "SELECT 1", nil, false))
	assert.False(t, g.Grade(context.Background(), "   \n\t", "SELECT 1", nil, false))
}

func TestGrade_StudentSyntaxError(t *testing.T) {
	g := newTestQueryGrader()
	assert.False(t, g.Grade(context.Background(), "SELEKT n FROM numbers", "SELECT n FROM numbers", numbersSetup, false))
}

func TestGrade_StudentRuntimeError(t *testing.T) {
	g := newTestQueryGrader()
	assert.False(t, g.Grade(context.Background(), "SELECT missing_col FROM numbers", "SELECT n FROM numbers", numbersSetup, false))
}

func TestGrade_SetupFailure(t *testing.T) {
	g := newTestQueryGrader()
	setup := append(append([]string{}, numbersSetup...), `INSERT INTO nope VALUES (1)`)
	assert.False(t, g.Grade(context.Background(), "SELECT n FROM numbers", "SELECT n FROM numbers", setup, false))
}

func TestGrade_DuplicateCountsRespected(t *testing.T) {
	g := newTestQueryGrader()
	student := `SELECT 1 UNION ALL SELECT 1 UNION ALL SELECT 2`
	reference := `SELECT 1 UNION ALL SELECT 2 UNION ALL SELECT 2`
	assert.False(t, g.Grade(context.Background(), student, reference, nil, false))

	same := `SELECT 1 UNION ALL SELECT 1`
	assert.True(t, g.Grade(context.Background(), same, same, nil, false))
}

func TestGrade_OrderSensitivity(t *testing.T) {
	g := newTestQueryGrader()
	student := `SELECT n FROM numbers ORDER BY n DESC`
	reference := `SELECT n FROM numbers ORDER BY n ASC`

	// same rows, different order
	assert.True(t, g.Grade(context.Background(), student, reference, numbersSetup, false))
	assert.False(t, g.Grade(context.Background(), student, reference, numbersSetup, true))
}

func TestGrade_WrongRows(t *testing.T) {
	g := newTestQueryGrader()
	assert.False(t, g.Grade(context.Background(),
		`SELECT n FROM numbers WHERE n > 1`,
		`SELECT n FROM numbers`,
		numbersSetup, false))
}

func TestMultisetDiff(t *testing.T) {
	student := [][]any{{int64(1)}, {int64(1)}, {int64(2)}}
	reference := [][]any{{int64(1)}, {int64(2)}, {int64(2)}}
	extra, missing := multisetDiff(student, reference)
	assert.Equal(t, 1, extra)
	assert.Equal(t, 1, missing)

	extra, missing = multisetDiff(reference, reference)
	assert.Zero(t, extra)
	assert.Zero(t, missing)
}
