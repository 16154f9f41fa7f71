package session

import "github.com/sqlschool/examkit/internal/quizset"

// QuestionReport is one row of the finished-session report.
type QuestionReport struct {
	ID          string       `json:"id"`
	Prompt      string       `json:"prompt"`
	Kind        quizset.Kind `json:"kind"`
	Correct     bool         `json:"correct"`
	Points      float64      `json:"points"`
	MaxPoints   float64      `json:"max_points"`
	TimeSpentMS int64        `json:"time_spent_ms"`
}

// Report is the rendered outcome of a terminal session. A blocked
// session exposes only the violation log: Blocked is set, Questions is
// empty and the score fields are zero.
type Report struct {
	Title        string           `json:"title"`
	Blocked      bool             `json:"blocked"`
	Questions    []QuestionReport `json:"questions,omitempty"`
	Score        float64          `json:"score"`
	MaxScore     float64          `json:"max_score"`
	Percent      float64          `json:"percent"`
	Grade        string           `json:"grade"`
	ElapsedMS    int64            `json:"elapsed_ms"`
	Violations   int              `json:"violations"`
	ViolationLog []string         `json:"violation_log,omitempty"`
}

// Report builds the report for a terminal session; ok is false while
// the session is still live or was never available.
func (c *Controller) Report() (Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status {
	case StatusCompletedView, StatusCompletedSummary, StatusBlocked:
	default:
		return Report{}, false
	}
	st := c.state
	r := Report{
		Title:        c.set.Title,
		Violations:   st.Violations,
		ViolationLog: append([]string(nil), st.ViolationLog...),
		ElapsedMS:    st.EndTime - st.StartTime,
	}
	if st.Lockout {
		r.Blocked = true
		return r, true
	}
	r.Score = st.Score
	r.MaxScore = st.MaxScore
	r.Percent = st.Percent()
	r.Grade = st.Grade
	for i := range st.Questions {
		q := st.Questions[i]
		qr := QuestionReport{
			ID:          q.ID,
			Prompt:      q.Prompt,
			Kind:        q.Kind,
			Correct:     st.Results[q.ID],
			MaxPoints:   q.Points,
			TimeSpentMS: st.TimeSpentMS[q.ID],
		}
		if qr.Correct {
			qr.Points = q.Points
		}
		r.Questions = append(r.Questions, qr)
	}
	return r, true
}
