// Package reply schedules delayed bot reactions to posts and comments.
//
// A burst picks distinct personas, gives each a staggered delay and hands one
// task per persona to a Dispatcher. When a task fires it re-checks that its
// target still exists, renders a comment and saves it. Every task ends in
// exactly one Outcome.
package reply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/shamstagram/internal/database"
	"github.com/edgard/shamstagram/internal/extract"
	"github.com/edgard/shamstagram/internal/logger"
	"github.com/edgard/shamstagram/internal/persona"
	"github.com/edgard/shamstagram/internal/random"
	"github.com/edgard/shamstagram/internal/render"
)

// Outcome is the terminal state of a scheduled reply.
type Outcome string

const (
	OutcomeSaved     Outcome = "saved"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Target kinds.
const (
	KindPost    = "post"
	KindComment = "comment"
)

// Gateway is the storage the scheduler reads and writes. database.Store
// satisfies it.
type Gateway interface {
	PostExists(ctx context.Context, id int64) (bool, error)
	CommentExists(ctx context.Context, id int64) (bool, error)
	SaveComment(ctx context.Context, comment *database.Comment) error
}

// Personas is the persona source. *persona.Registry satisfies it.
type Personas interface {
	Sample(n int, src random.Source) []*persona.Persona
	Get(name string) (*persona.Persona, error)
	KeywordTable() (map[string][]string, uint64)
}

// Observer receives task lifecycle events, typically for metrics.
type Observer interface {
	ReplyScheduled(kind string, delay time.Duration)
	ReplyFinished(kind string, outcome string)
}

type nopObserver struct{}

func (nopObserver) ReplyScheduled(string, time.Duration) {}
func (nopObserver) ReplyFinished(string, string)         {}

// Target identifies what a burst reacts to. ParentCommentID 0 means the post
// itself.
type Target struct {
	PostID          int64
	ParentCommentID int64
}

// Kind returns KindComment for comment replies and KindPost otherwise.
func (t Target) Kind() string {
	if t.ParentCommentID > 0 {
		return KindComment
	}
	return KindPost
}

// Burst controls how many personas react and when.
type Burst struct {
	Count    int
	MinDelay time.Duration
	MaxDelay time.Duration
	Stagger  time.Duration
}

type task struct {
	key     uuid.UUID
	jobID   uuid.UUID
	burstID uuid.UUID
	index   int
	target  Target
	persona string
	seed    string
	delay   time.Duration

	// cancelled is set under Scheduler.mu by CancelAll.
	cancelled bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRandom sets the source used for persona sampling, delays and
// rendering. It must be safe for concurrent use.
func WithRandom(src random.Source) Option {
	return func(s *Scheduler) { s.src = src }
}

// WithRenderer overrides the comment renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(s *Scheduler) { s.renderer = r }
}

// WithObserver registers a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

// Scheduler turns bursts into delayed, independently cancellable reply
// tasks. It is safe for concurrent use.
type Scheduler struct {
	personas   Personas
	gateway    Gateway
	dispatcher Dispatcher
	renderer   *render.Renderer
	src        random.Source
	observer   Observer
	logger     *slog.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]*task
	closed  bool
	running atomic.Int64

	extMu      sync.Mutex
	extractor  *extract.Extractor
	extVersion uint64
}

// NewScheduler wires a Scheduler around its collaborators.
func NewScheduler(log *slog.Logger, personas Personas, gateway Gateway, dispatcher Dispatcher, opts ...Option) *Scheduler {
	if log == nil {
		log = logger.Discard()
	}

	s := &Scheduler{
		personas:   personas,
		gateway:    gateway,
		dispatcher: dispatcher,
		src:        random.Global(),
		observer:   nopObserver{},
		logger:     log.With("component", "reply_scheduler"),
		pending:    make(map[uuid.UUID]*task),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = render.New(s.src)
	}
	return s
}

// ScheduleReplies draws up to burst.Count distinct personas and schedules
// one reply task each. It never blocks on the replies and never fails; the
// returned id only correlates log lines of the burst.
func (s *Scheduler) ScheduleReplies(target Target, seedText string, burst Burst) uuid.UUID {
	burstID := uuid.New()
	log := s.logger.With("burst_id", burstID, "kind", target.Kind(), "post_id", target.PostID)
	if target.ParentCommentID > 0 {
		log = log.With("parent_comment_id", target.ParentCommentID)
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		log.Warn("Scheduler is shut down, dropping burst")
		return burstID
	}

	picked := s.personas.Sample(burst.Count, s.src)
	if len(picked) == 0 {
		log.Warn("No personas available for burst")
		return burstID
	}

	delays := s.delays(len(picked), burst)
	scheduled := 0
	for i, p := range picked {
		t := &task{
			key:     uuid.New(),
			burstID: burstID,
			index:   i,
			target:  target,
			persona: p.Name,
			seed:    seedText,
			delay:   delays[i],
		}
		if s.dispatch(t, log) {
			scheduled++
		}
	}

	log.Info("Scheduled bot replies", "count", scheduled, "seed", logger.Preview(seedText, 60))
	return burstID
}

// delays draws n jitters in [MinDelay, MaxDelay), sorts them and adds
// index*Stagger, so delays within a burst never decrease.
func (s *Scheduler) delays(n int, burst Burst) []time.Duration {
	jitter := make([]time.Duration, n)
	for i := range jitter {
		jitter[i] = time.Duration(random.Uniform(s.src, float64(burst.MinDelay), float64(burst.MaxDelay)))
	}
	slices.Sort(jitter)

	for i := range jitter {
		jitter[i] += time.Duration(i) * burst.Stagger
	}
	return jitter
}

func (s *Scheduler) dispatch(t *task, log *slog.Logger) bool {
	s.mu.Lock()
	s.pending[t.key] = t
	s.mu.Unlock()

	name := fmt.Sprintf("reply-%s-%d", t.burstID, t.index)
	key := t.key
	jobID, err := s.dispatcher.After(t.delay, name, func() { s.fire(key) })
	if err != nil {
		if _, ok := s.claim(key); ok {
			log.Error("Failed to schedule bot reply", "persona", t.persona, "error", err)
			s.finish(t, OutcomeFailed)
		}
		return false
	}

	s.mu.Lock()
	_, stillPending := s.pending[key]
	if stillPending {
		t.jobID = jobID
	}
	cancelled := t.cancelled
	s.mu.Unlock()

	// CancelAll ran before the job id was known, so the job is still
	// registered with the dispatcher.
	if cancelled {
		s.dispatcher.Cancel(jobID)
		log.Debug("Bot reply cancelled while being scheduled", "persona", t.persona)
		return false
	}

	s.observer.ReplyScheduled(t.target.Kind(), t.delay)
	log.Debug("Bot reply pending", "persona", t.persona, "index", t.index, "delay", t.delay)
	return true
}

// claim moves a task out of the pending set. Only the first caller wins,
// which keeps every task to a single terminal transition.
func (s *Scheduler) claim(key uuid.UUID) (*task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.pending[key]
	if ok {
		delete(s.pending, key)
	}
	return t, ok
}

func (s *Scheduler) fire(key uuid.UUID) {
	s.running.Add(1)
	t, ok := s.claim(key)
	if !ok {
		s.running.Add(-1)
		return
	}

	outcome := OutcomeFailed
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Bot reply task panicked", "burst_id", t.burstID, "persona", t.persona, "panic", r)
			outcome = OutcomeFailed
		}
		s.finish(t, outcome)
		s.running.Add(-1)
	}()

	outcome = s.run(context.Background(), t)
}

func (s *Scheduler) run(ctx context.Context, t *task) Outcome {
	log := s.logger.With("burst_id", t.burstID, "persona", t.persona, "post_id", t.target.PostID)

	exists, err := s.targetExists(ctx, t.target)
	if err != nil {
		log.Error("Failed to check reply target", "error", err)
		return OutcomeFailed
	}
	if !exists {
		log.Debug("Reply target no longer exists, skipping")
		return OutcomeSkipped
	}

	p, err := s.personas.Get(t.persona)
	if err != nil {
		log.Debug("Persona no longer registered, skipping", "error", err)
		return OutcomeSkipped
	}

	bag := s.currentExtractor().Extract(t.seed)
	content := s.renderer.Render(p, bag, t.seed)

	comment := database.NewBotComment(t.target.PostID, t.target.ParentCommentID, p.Name, content, t.delay)
	if err := s.gateway.SaveComment(ctx, comment); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			log.Debug("Reply target removed before save, skipping", "error", err)
			return OutcomeSkipped
		}
		log.Error("Failed to save bot reply", "error", err)
		return OutcomeFailed
	}

	log.Info("Bot reply saved", "comment_id", comment.ID, "delay", t.delay)
	return OutcomeSaved
}

func (s *Scheduler) targetExists(ctx context.Context, target Target) (bool, error) {
	if target.ParentCommentID > 0 {
		return s.gateway.CommentExists(ctx, target.ParentCommentID)
	}
	return s.gateway.PostExists(ctx, target.PostID)
}

// currentExtractor rebuilds the extractor when the keyword table changed.
func (s *Scheduler) currentExtractor() *extract.Extractor {
	keywords, version := s.personas.KeywordTable()

	s.extMu.Lock()
	defer s.extMu.Unlock()

	if s.extractor == nil || s.extVersion != version {
		s.extractor = extract.New(keywords)
		s.extVersion = version
	}
	return s.extractor
}

func (s *Scheduler) finish(t *task, outcome Outcome) {
	s.observer.ReplyFinished(t.target.Kind(), string(outcome))
	s.logger.Debug("Bot reply finished", "burst_id", t.burstID, "persona", t.persona, "outcome", outcome)
}

// Pending returns the number of tasks that have neither fired nor been
// cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Idle reports whether no task is pending or running.
func (s *Scheduler) Idle() bool {
	return s.Pending() == 0 && s.running.Load() == 0
}

// CancelAll cancels every pending task and returns how many were
// cancelled. Tasks already running are not affected.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	cancelled := make([]*task, 0, len(s.pending))
	for key, t := range s.pending {
		t.cancelled = true
		cancelled = append(cancelled, t)
		delete(s.pending, key)
	}
	s.mu.Unlock()

	for _, t := range cancelled {
		if t.jobID != uuid.Nil {
			s.dispatcher.Cancel(t.jobID)
		}
		s.finish(t, OutcomeCancelled)
	}

	if len(cancelled) > 0 {
		s.logger.Info("Cancelled pending bot replies", "count", len(cancelled))
	}
	return len(cancelled)
}

// Shutdown rejects new bursts, cancels pending tasks and waits for running
// ones through the dispatcher.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.CancelAll()
	if err := s.dispatcher.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop reply dispatcher: %w", err)
	}

	s.logger.Info("Reply scheduler stopped")
	return nil
}
