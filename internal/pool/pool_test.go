package pool

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlschool/examkit/internal/quizset"
)

func identity(n int, swap func(i, j int)) {}

func reverse(n int, swap func(i, j int)) {
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}

func questions(ids ...string) []quizset.Question {
	qs := make([]quizset.Question, 0, len(ids))
	for _, id := range ids {
		qs = append(qs, quizset.Question{
			ID: id, Kind: quizset.KindSQLSelect, Prompt: id, Points: 5, ReferenceSQL: "SELECT 1",
		})
	}
	return qs
}

func ids(qs []quizset.Question) []string {
	out := make([]string, len(qs))
	for i := range qs {
		out[i] = qs[i].ID
	}
	return out
}

func TestSelect_RequiredAlwaysIncluded(t *testing.T) {
	src := questions("a", "b", "c", "d", "e")
	for i := 0; i < 20; i++ {
		sel := Select(src, []string{"c", "e"}, 3, New(rand.NewSource(int64(i))))
		require.Len(t, sel, 3)
		assert.Contains(t, ids(sel), "c")
		assert.Contains(t, ids(sel), "e")
	}
}

func TestSelect_LengthIsMinOfCountAndAvailable(t *testing.T) {
	src := questions("a", "b", "c")
	assert.Len(t, Select(src, nil, 2, identity), 2)
	assert.Len(t, Select(src, nil, 3, identity), 3)
	// short pool degrades gracefully
	assert.Len(t, Select(src, nil, 10, identity), 3)
}

func TestSelect_CountAtOrBelowRequired(t *testing.T) {
	src := questions("a", "b", "c", "d")
	sel := Select(src, []string{"a", "b", "c"}, 2, identity)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids(sel))
}

func TestSelect_NoDuplicates(t *testing.T) {
	src := questions("a", "b", "c", "d", "e")
	for i := 0; i < 20; i++ {
		sel := Select(src, []string{"b"}, 4, New(rand.NewSource(int64(i))))
		seen := map[string]int{}
		for _, id := range ids(sel) {
			seen[id]++
		}
		for id, n := range seen {
			assert.Equal(t, 1, n, "question %s drawn more than once", id)
		}
	}
}

func TestSelect_RequiredNotAlwaysFirst(t *testing.T) {
	src := questions("a", "b", "c")
	sel := Select(src, []string{"a"}, 3, reverse)
	// the final shuffle permutes the concatenation, so the required
	// question is not pinned to the front
	assert.NotEqual(t, "a", sel[0].ID)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids(sel))
}

func TestSelect_ShufflesOptionsWithoutMutatingSource(t *testing.T) {
	src := []quizset.Question{{
		ID: "q1", Kind: quizset.KindMultipleChoice, Prompt: "p", Points: 5,
		Options: []quizset.Option{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}, {ID: "c", Text: "C"}},
	}}
	sel := Select(src, nil, 1, reverse)
	require.Len(t, sel, 1)
	assert.Equal(t, "c", sel[0].Options[0].ID)
	// source order untouched
	assert.Equal(t, "a", src[0].Options[0].ID)
}

func TestMaxScore(t *testing.T) {
	sel := Select(questions("a", "b", "c"), nil, 2, identity)
	assert.InDelta(t, 10, MaxScore(sel), 1e-9)
	assert.Zero(t, MaxScore(nil))
}
