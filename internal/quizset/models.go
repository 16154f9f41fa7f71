package quizset

// Kind discriminates the question union.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindSQLSelect      Kind = "sql_select"
)

type Option struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text" validate:"required"`
}

type Question struct {
	ID     string  `json:"id" validate:"required"`
	Kind   Kind    `json:"kind" validate:"required,oneof=multiple_choice sql_select"`
	Prompt string  `json:"prompt" validate:"required"`
	Points float64 `json:"points" validate:"gt=0"`

	// multiple_choice only
	Options     []Option `json:"options,omitempty" validate:"dive"`
	CorrectHash string   `json:"correct_hash,omitempty"`

	// sql_select only
	ReferenceSQL   string   `json:"reference_sql,omitempty"`
	OrderSensitive bool     `json:"order_sensitive,omitempty"`
	Setup          []string `json:"setup,omitempty"`
}

// Set is the question-set document. Immutable once loaded.
type Set struct {
	Title string `json:"title" validate:"required"`

	// TimeLimitMin is the session wall-clock budget in minutes.
	TimeLimitMin int `json:"time_limit_min" validate:"gt=0"`

	// MaxCheatAttempts is the lockout threshold; 0 means unlimited.
	MaxCheatAttempts int `json:"max_cheat_attempts,omitempty" validate:"gte=0"`

	// Thresholds maps a grade label to the minimum percentage that earns
	// it; the highest qualifying threshold wins.
	Thresholds map[string]float64 `json:"thresholds" validate:"required,min=1"`

	// RequiredIDs are always included in a fresh draw.
	RequiredIDs []string `json:"required_ids,omitempty"`

	// QuestionCount is the target size of a fresh draw; 0 means all.
	QuestionCount int `json:"question_count,omitempty" validate:"gte=0"`

	// Setup statements run before every SQL question, ahead of any
	// per-question setup.
	Setup []string `json:"setup,omitempty"`

	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

// QuestionByID returns the question with the given id, or nil.
func (s *Set) QuestionByID(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}
