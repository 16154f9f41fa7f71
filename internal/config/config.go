package config

import (
	"os"
	"strings"
)

// Config carries everything the binaries read from the environment.
// Quiz behavior itself (time limit, thresholds, cheat ceiling) is data
// in the question-set document, not configuration.
type Config struct {
	HTTPAddr string // quizd listen address
	QuizDir  string // directory quizd serves question-set documents from

	StorePath string // session database file; empty = in-memory only
	QuizPath  string // default document for quizrun (path or URL)

	LogLevel  string
	LogFormat string // json|pretty

	CORSOrigins []string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		QuizDir:     envOr("QUIZ_DIR", "./quizzes"),
		StorePath:   envOr("STORE_PATH", "examkit.db"),
		QuizPath:    os.Getenv("QUIZ_PATH"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFormat:   envOr("LOG_FORMAT", "pretty"),
		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:8000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
