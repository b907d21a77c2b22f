package conversation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joestump/promptpad/internal/llm"
	"github.com/joestump/promptpad/internal/metrics"
)

// ErrNotFound is returned for an unknown conversation id.
var ErrNotFound = errors.New("conversation not found")

// Registry holds the in-memory conversations of all sessions. It can be
// bounded by a maximum size and an idle timeout; zero disables either bound.
type Registry struct {
	generator llm.Generator
	logger    *zap.Logger
	max       int
	idle      time.Duration
	now       func() time.Time

	mu    sync.Mutex
	convs map[string]*entry
}

type entry struct {
	conv     *Orchestrator
	lastSeen time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxConversations caps the number of live conversations. Creating one
// beyond the cap evicts the least recently used idle conversation.
func WithMaxConversations(n int) Option {
	return func(r *Registry) { r.max = n }
}

// WithIdleTimeout makes Prune drop conversations unused for longer than d.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) { r.idle = d }
}

func withClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(g llm.Generator, logger *zap.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		generator: g,
		logger:    logger,
		now:       time.Now,
		convs:     make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts an empty conversation with a fresh id.
func (r *Registry) Create() *Orchestrator {
	o := New(uuid.New().String(), r.generator, r.logger)

	r.mu.Lock()
	if r.max > 0 && len(r.convs) >= r.max {
		r.evictOldestLocked()
	}
	r.convs[o.ID()] = &entry{conv: o, lastSeen: r.now()}
	n := len(r.convs)
	r.mu.Unlock()

	metrics.ConversationsActive.Set(float64(n))
	return o
}

// evictOldestLocked drops the least recently used conversation that is not
// waiting for a reply. r.mu must be held.
func (r *Registry) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range r.convs {
		if e.conv.State() == Sending {
			continue
		}
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID == "" {
		r.logger.Warn("conversation cap reached with every conversation sending", zap.Int("max", r.max))
		return
	}
	delete(r.convs, oldestID)
	r.logger.Debug("evicted conversation", zap.String("conversation_id", oldestID))
}

// Get returns the conversation with id and marks it as used.
func (r *Registry) Get(id string) (*Orchestrator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.convs[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = r.now()
	return e.conv, nil
}

// GetOrCreate returns the conversation with id, or a new one when id is
// empty or unknown.
func (r *Registry) GetOrCreate(id string) *Orchestrator {
	if id != "" {
		if o, err := r.Get(id); err == nil {
			return o
		}
	}
	return r.Create()
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	if _, ok := r.convs[id]; !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.convs, id)
	n := len(r.convs)
	r.mu.Unlock()
	metrics.ConversationsActive.Set(float64(n))
	return nil
}

// Prune drops conversations idle for longer than the idle timeout and
// returns how many it removed. Conversations waiting for a reply are kept.
func (r *Registry) Prune() int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	removed := 0
	for id, e := range r.convs {
		if e.lastSeen.Before(cutoff) && e.conv.State() != Sending {
			delete(r.convs, id)
			removed++
		}
	}
	n := len(r.convs)
	r.mu.Unlock()

	if removed > 0 {
		metrics.ConversationsActive.Set(float64(n))
		r.logger.Debug("pruned idle conversations", zap.Int("removed", removed), zap.Int("remaining", n))
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.convs)
}
