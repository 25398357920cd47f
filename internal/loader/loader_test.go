package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/inaiurai/leaderboard/internal/demo"
	"github.com/inaiurai/leaderboard/internal/models"
	"github.com/inaiurai/leaderboard/internal/source"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubFetcher struct {
	agents    []models.Agent
	stats     models.AggregateStats
	listErr   error
	statsErr  error
	listCalls atomic.Int32
}

func (s *stubFetcher) ListAgents(_ context.Context, _ source.Filter) ([]models.Agent, error) {
	s.listCalls.Add(1)
	return s.agents, s.listErr
}

func (s *stubFetcher) Stats(_ context.Context) (models.AggregateStats, error) {
	return s.stats, s.statsErr
}

// blockingFetcher holds its first ListAgents call until the context is
// cancelled; later calls return immediately.
type blockingFetcher struct {
	started chan struct{}
	calls   atomic.Int32
}

func (b *blockingFetcher) ListAgents(ctx context.Context, _ source.Filter) ([]models.Agent, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return demo.Agents(), nil
}

func (b *blockingFetcher) Stats(_ context.Context) (models.AggregateStats, error) {
	return demo.Stats(), nil
}

// gatedFetcher holds every ListAgents call until release is closed.
type gatedFetcher struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedFetcher) ListAgents(_ context.Context, _ source.Filter) ([]models.Agent, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return demo.Agents(), nil
}

func (g *gatedFetcher) Stats(_ context.Context) (models.AggregateStats, error) {
	return demo.Stats(), nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestFetchJoinsBothResults(t *testing.T) {
	src := &stubFetcher{agents: demo.Agents(), stats: demo.Stats()}
	snap, err := New(src, nil).Fetch(context.Background(), source.Filter{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(snap.Agents) != 8 || snap.Stats.TotalAgents != 156 {
		t.Errorf("unexpected snapshot: %d agents, stats %+v", len(snap.Agents), snap.Stats)
	}
	if snap.LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
}

func TestFetchFailsAsAWhole(t *testing.T) {
	boom := &source.FetchError{Op: "stats", StatusCode: 503}
	cases := map[string]*stubFetcher{
		"list fails":  {stats: demo.Stats(), listErr: &source.FetchError{Op: "list", StatusCode: 500}},
		"stats fails": {agents: demo.Agents(), statsErr: boom},
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			snap, err := New(src, nil).Fetch(context.Background(), source.Filter{})
			if !errors.Is(err, source.ErrFetch) {
				t.Fatalf("expected ErrFetch, got %v", err)
			}
			if snap.Agents != nil || snap.Stats != (models.AggregateStats{}) {
				t.Errorf("partial data returned: %+v", snap)
			}
		})
	}
}

func TestLoadAssignsIncreasingGenerations(t *testing.T) {
	l := New(&stubFetcher{agents: demo.Agents(), stats: demo.Stats()}, nil)
	first, err := l.Load(context.Background(), source.Filter{})
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	second, err := l.Load(context.Background(), source.Filter{})
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if first.Generation != 1 || second.Generation != 2 {
		t.Errorf("generations = %d, %d", first.Generation, second.Generation)
	}
	if l.Current(first.Generation) || !l.Current(second.Generation) {
		t.Error("only the latest generation should be current")
	}
}

func TestLoadSupersededReturnsStale(t *testing.T) {
	src := &blockingFetcher{started: make(chan struct{})}
	l := New(src, nil)

	done := make(chan error, 1)
	go func() {
		_, err := l.Load(context.Background(), source.Filter{})
		done <- err
	}()
	<-src.started

	snap, err := l.Load(context.Background(), source.Filter{MinReputation: 50})
	if err != nil {
		t.Fatalf("newer Load: %v", err)
	}
	if snap.Generation != 2 {
		t.Errorf("newer load generation = %d, want 2", snap.Generation)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrStale) {
			t.Errorf("superseded load: expected ErrStale, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("superseded load was not cancelled")
	}
}

func TestLoadFailureReturnsError(t *testing.T) {
	l := New(&stubFetcher{listErr: &source.FetchError{Op: "list", Err: errors.New("dial tcp: refused")}}, nil)
	if _, err := l.Load(context.Background(), source.Filter{}); !errors.Is(err, source.ErrFetch) {
		t.Errorf("expected ErrFetch, got %v", err)
	}
	if l.Generation() != 1 {
		t.Errorf("failed load should still consume a generation, got %d", l.Generation())
	}
}

func TestSharedCoalescesConcurrentCalls(t *testing.T) {
	src := newGatedFetcher()
	l := New(src, nil)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]Snapshot, callers)
	errs := make([]error, callers)
	call := func(i int) {
		defer wg.Done()
		results[i], errs[i] = l.Shared(context.Background(), source.Filter{MinReputation: 50})
	}

	wg.Add(1)
	go call(0)
	<-src.entered
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go call(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	for i := range callers {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if len(results[i].Agents) != len(demo.Agents()) {
			t.Errorf("caller %d got %d agents", i, len(results[i].Agents))
		}
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("expected one upstream call, got %d", n)
	}
}

func TestSharedCallerCancelDoesNotFailOthers(t *testing.T) {
	src := newGatedFetcher()
	l := New(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Shared(ctx, source.Filter{})
		firstErr <- err
	}()
	<-src.entered

	second := make(chan error, 1)
	go func() {
		_, err := l.Shared(context.Background(), source.Filter{})
		second <- err
	}()

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller: expected context.Canceled, got %v", err)
	}
	close(src.release)
	if err := <-second; err != nil {
		t.Errorf("other waiter failed: %v", err)
	}
}

func TestFilterKey(t *testing.T) {
	yes, no := true, false
	keys := map[string]bool{}
	for _, f := range []source.Filter{
		{},
		{MinReputation: 50},
		{Specialty: "coding"},
		{Available: &yes},
		{Available: &no},
	} {
		keys[filterKey(f)] = true
	}
	if len(keys) != 5 {
		t.Errorf("filters collided: %v", keys)
	}
	if filterKey(source.Filter{Available: &no}) != filterKey(source.Filter{Available: new(bool)}) {
		t.Error("key should depend on the value, not the pointer")
	}
}
