// Package scheduler owns the simulated-reply lifecycle: one cancellable
// delayed task per outbound message, firing an atomic pending → responded
// transition after a randomized delay.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexus-crm/nexus/internal/crm"
	"github.com/nexus-crm/nexus/internal/pkg/logger"
)

// ErrNotPending is returned when scheduling is requested for a message
// that already left the pending state.
var ErrNotPending = errors.New("message is not pending")

// Scheduler manages one delayed reply task per message. The registry maps
// message IDs to timers; the persisted reply_due_at column is the durable
// source of truth and timers are re-armed from it on Start.
type Scheduler struct {
	store *crm.Store
	clock Clock
	pool  *ReplyPool

	minDelay time.Duration
	maxDelay time.Duration

	// sweep settings; noResponseAfter == 0 disables the sweep
	noResponseAfter time.Duration
	sweepInterval   time.Duration

	mu      sync.Mutex
	timers  map[uuid.UUID]Timer
	rng     *rand.Rand
	running bool

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock injects a clock, letting tests fire timers without real delays.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithDelayRange overrides the [min, max] reply delay window.
func WithDelayRange(min, max time.Duration) Option {
	return func(s *Scheduler) {
		s.minDelay = min
		s.maxDelay = max
	}
}

// WithNoResponseSweep enables the sweep that moves pending messages older
// than cutoff to no_response.
func WithNoResponseSweep(cutoff, interval time.Duration) Option {
	return func(s *Scheduler) {
		s.noResponseAfter = cutoff
		s.sweepInterval = interval
	}
}

// WithRandSource seeds the delay/template randomness deterministically.
func WithRandSource(src rand.Source) Option {
	return func(s *Scheduler) { s.rng = rand.New(src) }
}

// New creates a reply scheduler over the given store.
func New(store *crm.Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:         store,
		clock:         RealClock(),
		pool:          NewReplyPool(),
		minDelay:      30 * time.Second,
		maxDelay:      300 * time.Second,
		sweepInterval: 5 * time.Minute,
		timers:        make(map[uuid.UUID]Timer),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start re-arms timers for pending messages whose reply_due_at survived a
// restart, and launches the no-response sweep when configured. Overdue
// messages fire immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler already running")
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	pending, err := s.store.ListPendingScheduled(s.ctx)
	if err != nil {
		return fmt.Errorf("recover pending replies: %w", err)
	}
	now := s.clock.Now()
	for _, m := range pending {
		delay := m.ReplyDueAt.Sub(now)
		if delay < 0 {
			delay = 0
		}
		s.arm(m.ID, delay)
	}
	if len(pending) > 0 {
		logger.Info("re-armed pending reply timers", "count", len(pending))
	}

	if s.noResponseAfter > 0 {
		go s.sweepLoop()
	}
	return nil
}

// Stop cancels all in-flight timers without mutating any message.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.running = false
	s.mu.Unlock()
}

// Schedule registers a delayed simulated reply for the message. The delay
// is drawn uniformly from [minDelay, maxDelay] and persisted so a restart
// can re-arm it. The message stays pending until the timer fires.
func (s *Scheduler) Schedule(ctx context.Context, messageID uuid.UUID) error {
	m, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if m.Status != crm.MessagePending {
		return ErrNotPending
	}

	delay := s.drawDelay()
	due := s.clock.Now().Add(delay)
	if err := s.store.SetReplyDue(ctx, messageID, &due); err != nil {
		return fmt.Errorf("persist reply due time: %w", err)
	}

	s.arm(messageID, delay)
	logger.Info("scheduled simulated reply",
		"message_id", messageID, "delay", delay.Round(time.Second))
	return nil
}

// Cancel removes the pending reply task. It is a no-op, not an error, when
// the task already fired or was never scheduled.
func (s *Scheduler) Cancel(ctx context.Context, messageID uuid.UUID) error {
	s.mu.Lock()
	t, ok := s.timers[messageID]
	delete(s.timers, messageID)
	s.mu.Unlock()
	if ok {
		t.Stop()
	}

	// Clear the persisted due time so a restart will not re-arm it.
	// ErrNotFound means the message already transitioned: still a no-op.
	if err := s.store.SetReplyDue(ctx, messageID, nil); err != nil && !errors.Is(err, crm.ErrNotFound) {
		return fmt.Errorf("clear reply due time: %w", err)
	}
	return nil
}

// UserAnalytics reports message counts by status and average response
// latency for a user. Read-only.
func (s *Scheduler) UserAnalytics(ctx context.Context, userID uuid.UUID) (*crm.MessageStats, error) {
	return s.store.MessageStatsForUser(ctx, userID)
}

// arm registers the timer, replacing any existing one for the message.
func (s *Scheduler) arm(messageID uuid.UUID, delay time.Duration) {
	s.mu.Lock()
	if old, ok := s.timers[messageID]; ok {
		old.Stop()
	}
	s.timers[messageID] = s.clock.AfterFunc(delay, func() { s.fire(messageID) })
	s.mu.Unlock()
}

func (s *Scheduler) drawDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	spread := s.maxDelay - s.minDelay
	if spread <= 0 {
		return s.minDelay
	}
	return s.minDelay + time.Duration(s.rng.Int63n(int64(spread)+1))
}

func (s *Scheduler) pickTemplate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(s.pool.Size())
}

// fire runs on timer expiry. The pending → responded transition is a
// database compare-and-set, so losing the race against Cancel (or another
// transition) is a silent no-op.
func (s *Scheduler) fire(messageID uuid.UUID) {
	s.mu.Lock()
	delete(s.timers, messageID)
	// Fire under the scheduler lifetime: a callback still in flight when
	// Stop cancels the context aborts at the first store call.
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	m, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		logger.Error("load message for reply", "message_id", messageID, "error", err)
		return
	}

	var contact *crm.Contact
	if c, err := s.store.GetContact(ctx, m.ContactID); err == nil {
		contact = c
	}
	reply := s.pool.Render(s.pickTemplate(), contact)

	now := s.clock.Now()
	applied, err := s.store.MarkReplied(ctx, messageID, reply, now)
	if err != nil {
		logger.Error("mark message replied", "message_id", messageID, "error", err)
		return
	}
	if !applied {
		// Canceled or already transitioned; the CAS lost on purpose.
		return
	}

	if err := s.store.TouchLastContacted(ctx, m.ContactID, now); err != nil {
		logger.Error("touch contact after reply", "contact_id", m.ContactID, "error", err)
	}
	contactEmail := ""
	if contact != nil {
		contactEmail = contact.Email
	}
	logger.Info("simulated reply recorded",
		"message_id", messageID, "contact_email", contactEmail)
}

// sweepLoop periodically CAS-transitions stale pending messages to
// no_response. Runs only when a cutoff is configured.
func (s *Scheduler) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			cutoff := s.clock.Now().Add(-s.noResponseAfter)
			n, err := s.store.MarkNoResponseBefore(s.ctx, cutoff)
			if err != nil {
				log.Printf("[Scheduler] no-response sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[Scheduler] swept %d stale pending messages to no_response", n)
			}
		}
	}
}
