package session

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sqlschool/examkit/internal/grading"
	"github.com/sqlschool/examkit/internal/pool"
	"github.com/sqlschool/examkit/internal/quizset"
)

// Loader produces the question-set document, or fails in a way that
// degrades the controller to not_available.
type Loader func(ctx context.Context) (*quizset.Set, error)

// Controller owns the session state machine: question flow, timing,
// integrity escalation, grading and reporting. All mutation of the
// State goes through it, and the state is persisted after every
// committed transition. Timer ticks, integrity events and user actions
// may arrive concurrently; the mutex serializes them, and EndTime > 0
// is the authoritative freeze signal that turns the first two into
// no-ops.
type Controller struct {
	mu sync.Mutex

	loader Loader
	key    string
	store  Store
	log    zerolog.Logger

	now     func() time.Time
	shuffle pool.Shuffler
	warn    func(msg string)

	set     *quizset.Set
	grader  *grading.Grader
	status  Status
	state   *State
	timer   *Timer
	monitor *Monitor
}

type Option func(*Controller)

// WithClock injects the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithShuffler injects the permutation used for question selection.
func WithShuffler(s pool.Shuffler) Option {
	return func(c *Controller) { c.shuffle = s }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithWarn sets the surface for non-blocking integrity warnings
// ("attempt N of max").
func WithWarn(fn func(msg string)) Option {
	return func(c *Controller) { c.warn = fn }
}

func New(loader Loader, key string, store Store, opts ...Option) *Controller {
	c := &Controller{
		loader:  loader,
		key:     key,
		store:   store,
		log:     zerolog.Nop(),
		now:     time.Now,
		shuffle: pool.New(rand.NewSource(time.Now().UnixNano())),
		status:  StatusUninitialized,
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With().Str("component", "session").Logger()
	return c
}

// Load fetches the question set and either resumes a persisted session
// or prepares a fresh draw. A load failure is not an error: the
// controller degrades to not_available and shows nothing.
func (c *Controller) Load(ctx context.Context) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusUninitialized {
		return c.status
	}
	c.status = StatusLoading

	set, err := c.loader(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("question set unavailable")
		c.status = StatusNotAvailable
		return c.status
	}
	c.set = set
	c.grader = grading.NewGrader(set.Setup, c.log)
	c.monitor = NewMonitor(set.MaxCheatAttempts, c.warnLocked, c.lockoutLocked)

	if st, ok := c.restore(); ok {
		c.state = st
		c.monitor.Resume(st.Violations, st.ViolationLog)
		switch {
		case st.Lockout:
			c.status = StatusBlocked
		case st.Finished():
			c.status = StatusCompletedView
		case st.StartTime > 0:
			// session was live when the page was left: pick up the
			// countdown from the original start
			st.EnteredAt = c.now().UnixMilli()
			c.timer = NewTimer(st.StartTime, c.set.TimeLimitMin, c.expireLocked)
			c.monitor.Attach()
			c.status = StatusInProgress
			c.persistLocked()
		default:
			// persisted but never started: treat as abandoned
			c.freshDrawLocked()
			c.status = StatusReady
		}
		return c.status
	}

	c.freshDrawLocked()
	c.status = StatusReady
	return c.status
}

func (c *Controller) restore() (*State, bool) {
	data, ok, err := c.store.Get(c.key)
	if err != nil || !ok {
		return nil, false
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil || len(st.Questions) == 0 {
		c.log.Warn().Err(err).Msg("discarding unreadable persisted session")
		return nil, false
	}
	return &st, true
}

func (c *Controller) freshDrawLocked() {
	count := c.set.QuestionCount
	if count <= 0 || count > len(c.set.Questions) {
		count = len(c.set.Questions)
	}
	selected := pool.Select(c.set.Questions, c.set.RequiredIDs, count, c.shuffle)

	st := &State{
		ID:          uuid.NewString(),
		Questions:   selected,
		Answers:     make(map[string]grading.Answer, len(selected)),
		TimeSpentMS: make(map[string]int64, len(selected)),
		MaxScore:    pool.MaxScore(selected),
	}
	for i := range selected {
		st.Answers[selected[i].ID] = grading.Answer{}
		st.TimeSpentMS[selected[i].ID] = 0
	}
	c.state = st
}

// Start begins the attempt: stamps the clock, attaches the integrity
// monitor and arms the countdown.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusReady {
		return
	}
	nowMS := c.now().UnixMilli()
	c.state.StartTime = nowMS
	c.state.EnteredAt = nowMS
	c.timer = NewTimer(nowMS, c.set.TimeLimitMin, c.expireLocked)
	c.monitor.Attach()
	c.status = StatusInProgress
	c.persistLocked()
}

// Next moves to the following question, banking the time spent on the
// one being left.
func (c *Controller) Next() { c.move(1) }

// Prev moves to the preceding question.
func (c *Controller) Prev() { c.move(-1) }

func (c *Controller) move(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusInProgress || c.state.Finished() {
		return
	}
	nowMS := c.now().UnixMilli()
	c.bankTimeLocked(nowMS)
	pos := c.state.Position + delta
	if pos < 0 {
		pos = 0
	}
	if max := len(c.state.Questions) - 1; pos > max {
		pos = max
	}
	c.state.Position = pos
	c.state.EnteredAt = nowMS
	c.persistLocked()
}

// bankTimeLocked folds the elapsed time on the current question into
// its cumulative bucket.
func (c *Controller) bankTimeLocked(nowMS int64) {
	q := c.state.current()
	if q == nil || c.state.EnteredAt == 0 {
		return
	}
	c.state.TimeSpentMS[q.ID] += nowMS - c.state.EnteredAt
	c.state.EnteredAt = nowMS
}

// SetAnswer records the student's current answer for a question in the
// selection.
func (c *Controller) SetAnswer(questionID string, ans grading.Answer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusInProgress || c.state.Finished() {
		return
	}
	if _, ok := c.state.Answers[questionID]; !ok {
		return
	}
	c.state.Answers[questionID] = ans
	c.persistLocked()
}

// Finish ends the attempt and grades it. Manual finish and the forced
// finish on time expiry run the identical routine. Calling it on an
// already-completed session is a no-op.
func (c *Controller) Finish(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishLocked(ctx)
}

func (c *Controller) expireLocked() {
	c.log.Info().Msg("time expired, forcing finish")
	c.finishLocked(context.Background())
}

func (c *Controller) finishLocked(ctx context.Context) {
	if c.status != StatusInProgress || c.state.Finished() {
		return
	}
	nowMS := c.now().UnixMilli()
	c.bankTimeLocked(nowMS)
	c.monitor.Detach()
	c.state.EndTime = nowMS

	// grading pass: sequential, with per-question isolation so one bad
	// question never aborts the report
	st := c.state
	st.Results = make(map[string]bool, len(st.Questions))
	var score float64
	for i := range st.Questions {
		q := st.Questions[i]
		res := c.grader.Grade(ctx, q, st.Answers[q.ID])
		st.Results[q.ID] = res.Correct
		score += res.Points
	}
	st.Score = score
	st.Grade = gradeFor(c.set.Thresholds, st.Percent())

	c.status = StatusCompletedView
	c.persistLocked()
}

// lockoutLocked is the monitor's escalation callback; it runs under the
// controller mutex from within ReportViolation. A locked-out session is
// terminal and score-less: no grading pass runs.
func (c *Controller) lockoutLocked(now time.Time) {
	nowMS := now.UnixMilli()
	c.bankTimeLocked(nowMS)
	c.syncViolationsLocked()
	c.state.Lockout = true
	c.state.EndTime = nowMS
	c.monitor.Detach()
	c.status = StatusBlocked
	c.persistLocked()
	c.log.Warn().Int("violations", c.state.Violations).Msg("session locked out")
}

func (c *Controller) warnLocked(count int, limit string) {
	msg := "focus loss detected: attempt " + strconv.Itoa(count) + " of " + limit
	c.log.Warn().Msg(msg)
	if c.warn != nil {
		c.warn(msg)
	}
}

// ReportViolation feeds one focus or visibility loss from the embedding
// layer. Events after finish or lockout are no-ops.
func (c *Controller) ReportViolation(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusInProgress || c.state == nil || c.state.Finished() {
		return
	}
	c.monitor.Violation(c.now(), reason)
	if c.status == StatusInProgress {
		c.syncViolationsLocked()
		c.persistLocked()
	}
}

// ReportFocusLost records a window-focus violation.
func (c *Controller) ReportFocusLost() { c.ReportViolation("window lost focus") }

// ReportHidden records a tab-visibility violation.
func (c *Controller) ReportHidden() { c.ReportViolation("page visibility hidden") }

func (c *Controller) syncViolationsLocked() {
	c.state.Violations = c.monitor.Count()
	c.state.ViolationLog = c.monitor.Log()
}

// HandleTick drives the countdown; the embedding layer calls it about
// once per second, or uses Run.
func (c *Controller) HandleTick(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusInProgress || c.timer == nil {
		return
	}
	c.timer.Tick(now)
}

// Run ticks the countdown once per second until the session leaves
// in_progress or ctx is cancelled.
func (c *Controller) Run(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			c.HandleTick(now)
			if c.Status() != StatusInProgress {
				return
			}
		}
	}
}

// ToggleSummary flips between the completed report view and the
// summary view.
func (c *Controller) ToggleSummary() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.status {
	case StatusCompletedView:
		c.status = StatusCompletedSummary
	case StatusCompletedSummary:
		c.status = StatusCompletedView
	}
}

// AcknowledgeBlocked moves a blocked session to the summary view once
// the student has seen the lockout notice.
func (c *Controller) AcknowledgeBlocked() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusBlocked {
		c.status = StatusCompletedSummary
	}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Remaining is the countdown value at now; zero when no timer is live.
func (c *Controller) Remaining(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer == nil || c.state == nil || c.state.Finished() {
		return 0
	}
	return c.timer.Remaining(now)
}

// Current returns the question at the cursor plus its position, or nil
// outside an active session.
func (c *Controller) Current() (*quizset.Question, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return nil, 0, 0
	}
	q := c.state.current()
	if q == nil {
		return nil, 0, 0
	}
	cp := *q
	return &cp, c.state.Position, len(c.state.Questions)
}

// Snapshot returns a copy of the session state for inspection.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return State{}
	}
	return *c.state
}

func (c *Controller) persistLocked() {
	data, err := json.Marshal(c.state)
	if err != nil {
		c.log.Error().Err(err).Msg("encode session state")
		return
	}
	if err := c.store.Put(c.key, data); err != nil {
		c.log.Error().Err(err).Msg("persist session state")
	}
}

// Percent is the scored percentage; zero when nothing was scoreable.
func (s *State) Percent() float64 {
	if s.MaxScore <= 0 {
		return 0
	}
	return s.Score / s.MaxScore * 100
}

// gradeFor picks the grade whose threshold is the highest one at or
// below pct; if none qualify, the grade with the lowest threshold is
// the floor.
func gradeFor(thresholds map[string]float64, pct float64) string {
	best, bestTh := "", -1.0
	floor, floorTh := "", math.MaxFloat64
	for g, t := range thresholds {
		if t < floorTh {
			floorTh, floor = t, g
		}
		if t <= pct && t > bestTh {
			bestTh, best = t, g
		}
	}
	if best == "" {
		return floor
	}
	return best
}
