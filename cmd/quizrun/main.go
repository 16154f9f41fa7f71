// quizrun administers one session in the terminal: load or resume,
// answer, finish, report. It is the reference embedding of the session
// engine.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/sqlschool/examkit/internal/config"
	"github.com/sqlschool/examkit/internal/grading"
	"github.com/sqlschool/examkit/internal/logger"
	"github.com/sqlschool/examkit/internal/quizset"
	"github.com/sqlschool/examkit/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	setPath := flag.String("set", cfg.QuizPath, "question-set file or URL")
	flag.Parse()
	if *setPath == "" {
		fmt.Fprintln(os.Stderr, "usage: quizrun -set <file-or-url>")
		os.Exit(2)
	}
	path := *setPath

	ctx := context.Background()

	var store session.Store
	if cfg.StorePath == "" {
		store = session.NewMemoryStore()
	} else {
		s, err := session.OpenSQLiteStore(ctx, cfg.StorePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.StorePath).Msg("open session store")
		}
		defer s.Close()
		store = s
	}

	loader := func(ctx context.Context) (*quizset.Set, error) {
		if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
			return quizset.Fetch(ctx, nil, path)
		}
		return quizset.LoadFile(path)
	}

	c := session.New(loader, quizset.StoreKey(path), store,
		session.WithLogger(log),
		session.WithWarn(func(msg string) { color.Yellow("! %s", msg) }),
	)

	switch c.Load(ctx) {
	case session.StatusNotAvailable:
		color.Red("question set unavailable: %s", path)
		return
	case session.StatusBlocked:
		printBlocked(c)
		return
	case session.StatusCompletedView:
		printReport(c)
		return
	case session.StatusInProgress:
		color.Yellow("resuming session, %s remaining", session.FormatRemaining(c.Remaining(time.Now())))
	case session.StatusReady:
		c.Start()
	}

	tctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.Run(tctx)

	in := bufio.NewScanner(os.Stdin)
	for c.Status() == session.StatusInProgress {
		q, pos, total := c.Current()
		if q == nil {
			break
		}
		printQuestion(c, q, pos, total)
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		switch line {
		case "":
		case "n":
			c.Next()
		case "p":
			c.Prev()
		case "finish":
			c.Finish(ctx)
		default:
			if q.Kind == quizset.KindMultipleChoice {
				ids := strings.Split(line, ",")
				for i := range ids {
					ids[i] = strings.TrimSpace(ids[i])
				}
				c.SetAnswer(q.ID, grading.Answer{OptionIDs: ids})
				c.Next()
			} else {
				c.SetAnswer(q.ID, grading.Answer{Query: line})
			}
		}
	}

	// stdin closed or time expired mid-prompt
	if c.Status() == session.StatusInProgress {
		c.Finish(ctx)
	}
	if c.Status() == session.StatusBlocked {
		printBlocked(c)
		return
	}
	printReport(c)
}

func printQuestion(c *session.Controller, q *quizset.Question, pos, total int) {
	remaining := session.FormatRemaining(c.Remaining(time.Now()))
	color.Cyan("\n[%d/%d] (%s left, %.0f pts) %s", pos+1, total, remaining, q.Points, q.Prompt)
	if q.Kind == quizset.KindMultipleChoice {
		for _, opt := range q.Options {
			fmt.Printf("  %s) %s\n", opt.ID, opt.Text)
		}
		fmt.Println("answer with option ids (comma separated), or n/p/finish")
	} else {
		fmt.Println("answer with a SQL statement, or n/p/finish")
	}
}

func printReport(c *session.Controller) {
	rep, ok := c.Report()
	if !ok {
		return
	}
	bold := color.New(color.Bold)
	bold.Printf("\n%s\n", rep.Title)
	for _, q := range rep.Questions {
		mark := color.RedString("✗")
		if q.Correct {
			mark = color.GreenString("✓")
		}
		fmt.Printf(" %s %-40.40s %4.1f/%.1f pts  %s\n",
			mark, q.Prompt, q.Points, q.MaxPoints, session.FormatRemaining(time.Duration(q.TimeSpentMS)*time.Millisecond))
	}
	bold.Printf("score %.1f/%.1f (%.1f%%)  grade %s  elapsed %s  violations %d\n",
		rep.Score, rep.MaxScore, rep.Percent, rep.Grade,
		session.FormatRemaining(time.Duration(rep.ElapsedMS)*time.Millisecond), rep.Violations)
}

func printBlocked(c *session.Controller) {
	rep, ok := c.Report()
	if !ok {
		return
	}
	color.Red("session blocked after repeated focus loss")
	for _, line := range rep.ViolationLog {
		fmt.Println("  " + line)
	}
	c.AcknowledgeBlocked()
}
