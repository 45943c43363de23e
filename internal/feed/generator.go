// Package feed synthesizes the live activity stream: a bounded, newest-first
// buffer of fake bets refreshed on a fixed cadence.
//
// The feed is a push model. The buffer is mutated on a timer, independent of
// bet placement, trend refresh, or rendering, and consumers only ever see it
// as a read-only ordered snapshot. Synthetic events are never derived from
// real bet records; the two streams stay decoupled.
package feed

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atarjan/memebet/internal/metrics"
	"github.com/atarjan/memebet/internal/models"
)

const (
	// DefaultInterval is the steady-state generation cadence.
	DefaultInterval = 5 * time.Second
	// DefaultSeedCap bounds the initial batch synthesized from trend items.
	DefaultSeedCap = 5
	// DefaultBufferCap bounds the buffer; older events are dropped.
	DefaultBufferCap = 10

	// Synthetic amounts fall in [minAmount, minAmount+amountSpread).
	minAmount    = 100
	amountSpread = 1000
)

// symbolVocabulary is the fixed set steady-state events draw from.
var symbolVocabulary = []string{"DOGE", "PEPE", "SHIB", "WOJAK", "MOON"}

// Config tunes the generator. Zero values fall back to the defaults above.
type Config struct {
	Interval  time.Duration
	SeedCap   int
	BufferCap int
}

// Generator owns the bounded activity buffer and the timer that feeds it.
type Generator struct {
	interval  time.Duration
	seedCap   int
	bufferCap int

	mu      sync.RWMutex
	events  []models.ActivityEvent // newest first
	stopped bool
	started bool

	done    chan struct{}
	rnd     *rand.Rand
	onEvent func(models.ActivityEvent)
}

// New creates a generator. Call Seed, then Start; Stop must be called when
// the owning context is torn down or the timer leaks.
func New(cfg Config) *Generator {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.SeedCap <= 0 {
		cfg.SeedCap = DefaultSeedCap
	}
	if cfg.BufferCap <= 0 {
		cfg.BufferCap = DefaultBufferCap
	}
	return &Generator{
		interval:  cfg.Interval,
		seedCap:   cfg.SeedCap,
		bufferCap: cfg.BufferCap,
		events:    make([]models.ActivityEvent, 0, cfg.BufferCap),
		done:      make(chan struct{}),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Subscribe registers a callback invoked once per steady-state event, after
// the buffer mutation and outside the lock. Must be called before Start.
func (g *Generator) Subscribe(fn func(models.ActivityEvent)) {
	g.onEvent = fn
}

// Seed fills the buffer with an initial batch synthesized from the current
// trend item set: one event per item, truncated to the seed cap. Timestamps
// are spread into the recent past so the batch reads as prior activity.
func (g *Generator) Seed(items []models.TrendItem) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}

	n := len(items)
	if n > g.seedCap {
		n = g.seedCap
	}

	now := time.Now()
	seeded := make([]models.ActivityEvent, 0, n)
	// Newest first: item 0 is the most recent.
	for i := 0; i < n; i++ {
		seeded = append(seeded, g.synthesize(items[i].Symbol, now.Add(-time.Duration(g.rnd.Intn(3600))*time.Second)))
	}
	g.events = seeded
	g.truncateLocked()
}

// Start launches the steady-state timer. Each tick synthesizes exactly one
// event, prepends it, and truncates the buffer to the cap.
func (g *Generator) Start() {
	g.mu.Lock()
	if g.started || g.stopped {
		g.mu.Unlock()
		return
	}
	g.started = true
	g.mu.Unlock()

	go func() {
		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()
		for {
			select {
			case <-g.done:
				return
			case <-ticker.C:
				g.Tick()
			}
		}
	}()
}

// Tick synthesizes one steady-state event. It is a no-op after Stop, so a
// timer edge that fires during teardown can never mutate a discarded buffer.
func (g *Generator) Tick() {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	event := g.synthesize(symbolVocabulary[g.rnd.Intn(len(symbolVocabulary))], time.Now())
	// Prepend, then truncate: atomic from the consumer's point of view.
	g.events = append([]models.ActivityEvent{event}, g.events...)
	g.truncateLocked()
	fn := g.onEvent
	g.mu.Unlock()

	metrics.FeedEvents.Inc()
	if fn != nil {
		fn(event)
	}
}

// Stop cancels the timer and freezes the buffer. It is synchronous and
// idempotent: once it returns, no further mutation occurs.
func (g *Generator) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	g.stopped = true
	close(g.done)
}

// Events returns a snapshot of the buffer, newest first.
func (g *Generator) Events() []models.ActivityEvent {
	g.mu.RLock()
	defer g.mu.RUnlock()
	snapshot := make([]models.ActivityEvent, len(g.events))
	copy(snapshot, g.events)
	return snapshot
}

// truncateLocked drops everything beyond the buffer cap. Callers hold mu.
func (g *Generator) truncateLocked() {
	if len(g.events) > g.bufferCap {
		g.events = g.events[:g.bufferCap]
	}
}

// synthesize builds one fake bet event. Callers hold mu (g.rnd is not
// goroutine-safe).
func (g *Generator) synthesize(symbol string, ts time.Time) models.ActivityEvent {
	trader := g.rnd.Intn(100) + 1
	direction := models.DirectionUp
	if g.rnd.Intn(2) == 0 {
		direction = models.DirectionDown
	}
	return models.ActivityEvent{
		ID:          uuid.New().String(),
		UserID:      fmt.Sprintf("user-%d", trader),
		DisplayName: fmt.Sprintf("Trader%d", trader),
		AvatarRef:   fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%d", trader),
		Symbol:      symbol,
		Amount:      int64(minAmount + g.rnd.Intn(amountSpread)),
		Direction:   direction,
		Timestamp:   ts,
	}
}
