package grading

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
)

// QueryGrader grades free-form SQL answers by running the student and
// reference statements against a throwaway database and comparing
// result multisets. Nothing it does can fail the caller: every error
// path grades as incorrect and is logged.
type QueryGrader struct {
	log zerolog.Logger
}

func NewQueryGrader(log zerolog.Logger) *QueryGrader {
	return &QueryGrader{log: log.With().Str("component", "query_grader").Logger()}
}

// Grade reports whether studentSQL produces the same result set as
// referenceSQL after the setup statements have run. The comparison is
// duplicate-preserving and unordered; when orderSensitive is set, both
// statements are re-run and their full row sequences must match too.
func (g *QueryGrader) Grade(ctx context.Context, studentSQL, referenceSQL string, setup []string, orderSensitive bool) bool {
	student := strings.TrimSpace(studentSQL)
	if student == "" {
		return false
	}
	student = stripTerminator(student)
	reference := stripTerminator(strings.TrimSpace(referenceSQL))

	db, err := openEphemeral(ctx)
	if err != nil {
		g.log.Error().Err(err).Msg("open grading database")
		return false
	}
	defer db.Close()

	for _, stmt := range setup {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			g.log.Warn().Err(err).Str("stmt", stmt).Msg("setup statement failed")
			return false
		}
	}

	// The student statement runs standalone first so its own syntax or
	// runtime errors never reach the comparison.
	studentRes, err := execute(ctx, db, student)
	if err != nil {
		return false
	}

	refRes, err := execute(ctx, db, reference)
	if err != nil {
		g.log.Error().Err(err).Msg("reference statement failed")
		return false
	}

	extra, missing := multisetDiff(studentRes.Rows, refRes.Rows)
	if extra != 0 || missing != 0 {
		return false
	}

	if orderSensitive {
		sr, err := execute(ctx, db, student)
		if err != nil {
			return false
		}
		rr, err := execute(ctx, db, reference)
		if err != nil {
			g.log.Error().Err(err).Msg("reference statement failed on ordered re-run")
			return false
		}
		if !sameSequence(sr.Rows, rr.Rows) {
			return false
		}
	}
	return true
}

// stripTerminator removes at most one trailing statement terminator.
// Defensive normalization, not parsing.
func stripTerminator(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(s, ";"))
}

func rowKey(row []any) string {
	b, _ := json.Marshal(row)
	return string(b)
}

// multisetDiff counts rows present in student but not reference (extra)
// and vice versa (missing), preserving duplicate counts. {1,1,2} vs
// {1,2,2} yields extra=1, missing=1.
func multisetDiff(student, reference [][]any) (extra, missing int) {
	counts := make(map[string]int, len(student))
	for _, r := range student {
		counts[rowKey(r)]++
	}
	for _, r := range reference {
		counts[rowKey(r)]--
	}
	for _, c := range counts {
		if c > 0 {
			extra += c
		} else {
			missing -= c
		}
	}
	return extra, missing
}

func sameSequence(a, b [][]any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if rowKey(a[i]) != rowKey(b[i]) {
			return false
		}
	}
	return true
}
