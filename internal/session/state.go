package session

import (
	"github.com/sqlschool/examkit/internal/grading"
	"github.com/sqlschool/examkit/internal/quizset"
)

// Status enumerates controller states.
type Status string

const (
	StatusUninitialized    Status = "uninitialized"
	StatusLoading          Status = "loading"
	StatusNotAvailable     Status = "not_available"
	StatusReady            Status = "ready"
	StatusInProgress       Status = "in_progress"
	StatusCompletedView    Status = "completed_view"
	StatusCompletedSummary Status = "completed_summary"
	StatusBlocked          Status = "blocked"
)

// State is one attempt's full record, persisted verbatim as a single
// JSON blob keyed by the question-set identity. It is mutated only by
// the Controller. Once EndTime is set the state is frozen: no answer or
// timing mutation is permitted.
type State struct {
	ID string `json:"id"`

	// Questions is the subset drawn for this attempt, in presentation
	// order, options pre-shuffled.
	Questions []quizset.Question `json:"questions"`

	// Answers and TimeSpentMS have exactly one entry per selected
	// question, initialized at draw time.
	Answers     map[string]grading.Answer `json:"answers"`
	TimeSpentMS map[string]int64          `json:"time_spent_ms"`

	Position int `json:"position"`

	StartTime int64 `json:"start_time"` // unix ms; 0 = never started
	EndTime   int64 `json:"end_time"`   // unix ms; 0 = not finished
	EnteredAt int64 `json:"entered_at"` // unix ms, entry into current question

	Violations   int      `json:"violations"`
	ViolationLog []string `json:"violation_log"`

	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Grade    string  `json:"grade"`

	// Results records per-question correctness at finish time so a
	// resumed completed session can render its report without
	// re-running any SQL.
	Results map[string]bool `json:"results,omitempty"`

	Lockout bool `json:"lockout"`
}

// Finished reports whether the attempt is immutably complete.
func (s *State) Finished() bool { return s.EndTime > 0 }

func (s *State) current() *quizset.Question {
	if s.Position < 0 || s.Position >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.Position]
}
