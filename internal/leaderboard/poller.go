package leaderboard

import (
	"context"
	"sync"
	"time"

	"github.com/atarjan/memebet/internal/logger"
	"github.com/atarjan/memebet/internal/metrics"
	"github.com/atarjan/memebet/internal/models"
)

// DefaultPollInterval is the refresh cadence for the ranked leaderboard.
const DefaultPollInterval = 30 * time.Second

// Provider fetches raw standings for a window. The window filter is applied
// by the provider, never recomputed locally.
type Provider interface {
	FetchStandings(ctx context.Context, window models.Window) ([]models.Standing, error)
}

// Poller refreshes the leaderboard on a fixed cadence and on explicit window
// changes, serving the latest ranked snapshot to readers. A fetch failure
// keeps the previous snapshot and is recorded as the last error, never
// swallowed.
type Poller struct {
	provider Provider
	interval time.Duration

	mu      sync.RWMutex
	window  models.Window
	entries []models.LeaderboardEntry
	summary models.Summary
	lastErr error
	stopped bool
	started bool

	done chan struct{}
}

// NewPoller creates a poller for the given window. A non-positive interval
// falls back to DefaultPollInterval.
func NewPoller(provider Provider, interval time.Duration, window models.Window) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		provider: provider,
		interval: interval,
		window:   window,
		done:     make(chan struct{}),
	}
}

// Start runs an immediate refresh and then polls until Stop or context
// cancellation.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	if err := p.Refresh(ctx); err != nil {
		logger.Warn("Initial leaderboard refresh failed: %v", err)
	}

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.Refresh(ctx); err != nil {
					logger.Warn("Leaderboard refresh failed: %v", err)
				}
			}
		}
	}()
}

// Refresh fetches standings for the current window and recomputes the
// ranking wholesale.
func (p *Poller) Refresh(ctx context.Context) error {
	p.mu.RLock()
	window := p.window
	stopped := p.stopped
	p.mu.RUnlock()
	if stopped {
		return nil
	}

	standings, err := p.provider.FetchStandings(ctx, window)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		return err
	}

	entries := Aggregate(standings)
	summary := Summarize(entries)
	metrics.LeaderboardRefreshes.Inc()

	p.mu.Lock()
	if !p.stopped {
		p.entries = entries
		p.summary = summary
		p.lastErr = nil
	}
	p.mu.Unlock()
	return nil
}

// SetWindow switches the time window and refreshes immediately.
func (p *Poller) SetWindow(ctx context.Context, window models.Window) error {
	if err := window.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.window = window
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// Window returns the currently selected time window.
func (p *Poller) Window() models.Window {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.window
}

// Current returns the latest ranked snapshot and its summary.
func (p *Poller) Current() ([]models.LeaderboardEntry, models.Summary) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entries := make([]models.LeaderboardEntry, len(p.entries))
	copy(entries, p.entries)
	return entries, p.summary
}

// LastError returns the most recent fetch failure, or nil after a
// successful refresh.
func (p *Poller) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// Stop cancels the poll timer. No snapshot mutation occurs after Stop
// returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.done)
}
