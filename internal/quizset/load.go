package quizset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrUnavailable is returned by the loaders for anything that should
// degrade to the not-available state rather than surface as an error:
// unreachable documents, bad status codes, malformed payloads.
var ErrUnavailable = fmt.Errorf("question set unavailable")

// Parse decodes and validates a question-set document.
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode question set: %w", err)
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("validate question set: %w", err)
	}
	seen := make(map[string]struct{}, len(s.Questions))
	for i := range s.Questions {
		q := &s.Questions[i]
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}
		switch q.Kind {
		case KindMultipleChoice:
			if len(q.Options) < 2 {
				return nil, fmt.Errorf("question %q: multiple choice needs at least two options", q.ID)
			}
			if q.CorrectHash == "" {
				return nil, fmt.Errorf("question %q: missing correct_hash", q.ID)
			}
		case KindSQLSelect:
			if strings.TrimSpace(q.ReferenceSQL) == "" {
				return nil, fmt.Errorf("question %q: missing reference_sql", q.ID)
			}
		}
	}
	for _, id := range s.RequiredIDs {
		if _, ok := seen[id]; !ok {
			return nil, fmt.Errorf("required id %q not in question set", id)
		}
	}
	return &s, nil
}

// LoadFile reads a question-set document from disk.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrUnavailable
	}
	s, err := Parse(data)
	if err != nil {
		return nil, ErrUnavailable
	}
	return s, nil
}

// Fetch retrieves a question-set document over HTTP with caching
// disabled, so a refreshed document is always picked up.
func Fetch(ctx context.Context, client *http.Client, url string) (*Set, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ErrUnavailable
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	resp, err := client.Do(req)
	if err != nil {
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, ErrUnavailable
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrUnavailable
	}
	s, err := Parse(data)
	if err != nil {
		return nil, ErrUnavailable
	}
	return s, nil
}

// StoreKey derives the session-store key for a question-set location.
// Sessions are keyed by document identity so two quizzes never share
// persisted state.
func StoreKey(path string) string {
	return "examkit:session:" + strings.TrimSuffix(path, "/")
}
