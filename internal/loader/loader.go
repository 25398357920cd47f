// Package loader fetches agent records and marketplace statistics together.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/inaiurai/leaderboard/internal/models"
	"github.com/inaiurai/leaderboard/internal/source"
)

// sharedTimeout bounds a coalesced fetch, which outlives any single caller.
const sharedTimeout = 30 * time.Second

// ErrStale is returned by Load when a newer load started before it finished.
var ErrStale = errors.New("load superseded by a newer request")

// Fetcher is the subset of source.Source the loader needs.
type Fetcher interface {
	ListAgents(ctx context.Context, f source.Filter) ([]models.Agent, error)
	Stats(ctx context.Context) (models.AggregateStats, error)
}

// Snapshot is one consistent pair of records and statistics.
type Snapshot struct {
	Agents     []models.Agent        `json:"agents"`
	Stats      models.AggregateStats `json:"stats"`
	Generation uint64                `json:"generation"`
	LoadedAt   time.Time             `json:"loaded_at"`
}

// Loader joins the two fetches. Fetch and Shared are safe for any number of
// concurrent callers; Load is for a single interactive session where only
// the latest request matters.
type Loader struct {
	src    Fetcher
	log    *slog.Logger
	flight singleflight.Group

	gen    atomic.Uint64
	mu     sync.Mutex
	cancel context.CancelFunc
}

// New returns a Loader over src.
func New(src Fetcher, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{src: src, log: log}
}

// Fetch issues ListAgents and Stats concurrently. Both must succeed; if
// either fails the other is cancelled and no data is returned.
func (l *Loader) Fetch(ctx context.Context, f source.Filter) (Snapshot, error) {
	var (
		agents []models.Agent
		stats  models.AggregateStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agents, err = l.src.ListAgents(gctx, f)
		if err != nil {
			return fmt.Errorf("list agents: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stats, err = l.src.Stats(gctx)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Agents: agents, Stats: stats, LoadedAt: time.Now()}, nil
}

// Shared is Fetch with concurrent calls for the same filter collapsed into
// one upstream request. Every waiter gets the same Snapshot, so callers must
// treat Agents as read-only.
func (l *Loader) Shared(ctx context.Context, f source.Filter) (Snapshot, error) {
	// The first caller's cancellation must not fail the other waiters.
	ch := l.flight.DoChan(filterKey(f), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedTimeout)
		defer cancel()
		return l.Fetch(fctx, f)
	})
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Snapshot{}, res.Err
		}
		if res.Shared {
			l.log.Debug("fetch coalesced", "key", filterKey(f))
		}
		return res.Val.(Snapshot), nil
	}
}

func filterKey(f source.Filter) string {
	avail := "any"
	if f.Available != nil {
		avail = fmt.Sprint(*f.Available)
	}
	return fmt.Sprintf("rep=%d|spec=%s|avail=%s", f.MinReputation, f.Specialty, avail)
}

// Load starts a new generation, cancels the load it replaces and fetches.
// A load that is overtaken by a newer one returns ErrStale instead of its
// data, so callers never apply an out-of-order response.
func (l *Loader) Load(ctx context.Context, f source.Filter) (Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	gen := l.gen.Add(1)
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.mu.Unlock()

	start := time.Now()
	snap, err := l.Fetch(ctx, f)
	if !l.Current(gen) {
		l.log.Debug("discarding stale load", "generation", gen)
		return Snapshot{}, ErrStale
	}
	if err != nil {
		l.log.Warn("load failed", "generation", gen, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return Snapshot{}, err
	}
	snap.Generation = gen
	l.log.Debug("load complete", "generation", gen, "agents", len(snap.Agents), "duration_ms", time.Since(start).Milliseconds())
	return snap, nil
}

// Current reports whether gen is the most recently started generation.
func (l *Loader) Current(gen uint64) bool {
	return l.gen.Load() == gen
}

// Generation returns the most recently started generation.
func (l *Loader) Generation() uint64 {
	return l.gen.Load()
}
