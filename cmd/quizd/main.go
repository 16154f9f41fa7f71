// quizd hosts question-set documents for the docs frontend. It serves
// static JSON with caching disabled, since the engine must always see
// the latest document, and performs no grading and holds no student
// state.
package main

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/sqlschool/examkit/internal/config"
	"github.com/sqlschool/examkit/internal/logger"
	"github.com/sqlschool/examkit/internal/quizset"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat).With().Str("component", "quizd").Logger()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Cache-Control", "Pragma"},
		MaxAge:         300,
	}))

	r.Get("/sets/{name}", serveSet(cfg.QuizDir, log))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	log.Info().Str("addr", cfg.HTTPAddr).Str("dir", cfg.QuizDir).Msg("serving question sets")
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// serveSet validates the document before serving it, so authoring
// mistakes show up here instead of as a silent not-available quiz.
func serveSet(dir string, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if strings.Contains(name, "..") || strings.ContainsRune(name, '/') {
			http.NotFound(w, r)
			return
		}
		path := filepath.Join(dir, name)
		if _, err := quizset.LoadFile(path); err != nil {
			log.Warn().Str("path", path).Msg("refusing to serve invalid question set")
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, path)
	}
}
