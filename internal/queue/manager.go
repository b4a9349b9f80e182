package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/mastery"
	"github.com/abhisek/opicdrill/internal/store"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"
)

// ErrRefillInFlight is returned by Refill when a refill for the same kind
// is already running.
var ErrRefillInFlight = errors.New("refill already in progress")

// Source produces new candidate items for a kind. Implementations may
// return keys that already exist; the manager drops them.
type Source interface {
	Batch(ctx context.Context, kind library.Kind) ([]library.Item, error)
}

// RefillResult describes one completed refill attempt.
type RefillResult struct {
	Kind     library.Kind
	Received int
	Added    int
	Latency  time.Duration
	Err      error
}

// Options configures a Manager.
type Options struct {
	Library *library.Store
	Source  Source

	// Events, when set, receives one refill event per attempt.
	Events store.EventRepo

	// Blobs, when set, stores in-progress queues for resume.
	Blobs store.BlobRepo

	Policy  mastery.Policy
	Configs map[library.Kind]KindConfig
	Logger  *log.Logger

	// Seed seeds the shuffle. Zero means a time-based seed.
	Seed uint64

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Manager serves queues from the library and refills the library in the
// background. At most one refill per kind runs at any time; a request that
// arrives while one is running is skipped, not queued.
type Manager struct {
	lib     *library.Store
	src     Source
	events  store.EventRepo
	blobs   store.BlobRepo
	policy  mastery.Policy
	configs map[library.Kind]KindConfig
	logger  *log.Logger
	now     func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	inflight  map[library.Kind]*semaphore.Weighted
	refilling map[library.Kind]*atomic.Bool
	wg        sync.WaitGroup

	listenerMu sync.RWMutex
	listener   func(RefillResult)
}

// NewManager creates a manager.
func NewManager(opts Options) *Manager {
	if opts.Configs == nil {
		opts.Configs = DefaultConfigs()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	m := &Manager{
		lib:       opts.Library,
		src:       opts.Source,
		events:    opts.Events,
		blobs:     opts.Blobs,
		policy:    opts.Policy,
		configs:   opts.Configs,
		logger:    opts.Logger,
		now:       opts.Now,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		inflight:  make(map[library.Kind]*semaphore.Weighted, len(library.Kinds)),
		refilling: make(map[library.Kind]*atomic.Bool, len(library.Kinds)),
	}
	for _, k := range library.Kinds {
		m.inflight[k] = semaphore.NewWeighted(1)
		m.refilling[k] = &atomic.Bool{}
	}
	return m
}

// SetListener registers fn to be called after every refill attempt. fn
// runs on the refill goroutine.
func (m *Manager) SetListener(fn func(RefillResult)) {
	m.listenerMu.Lock()
	m.listener = fn
	m.listenerMu.Unlock()
}

// Config returns the configuration for kind.
func (m *Manager) Config(kind library.Kind) KindConfig {
	return m.configs[kind]
}

// Refilling reports whether a refill for kind is running.
func (m *Manager) Refilling(kind library.Kind) bool {
	if f, ok := m.refilling[kind]; ok {
		return f.Load()
	}
	return false
}

// Select builds a queue for kind from the current library without
// triggering a refill.
func (m *Manager) Select(kind library.Kind, now time.Time) Queue {
	items := m.lib.Items(kind)
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return Select(items, kind, m.configs[kind], m.policy, now, m.rng)
}

// Next returns a queue for kind built from what the library holds now, and
// starts a background refill if the library is running low. It never waits
// for generation. ErrEmptyQueue is returned when nothing can be served.
func (m *Manager) Next(ctx context.Context, kind library.Kind, now time.Time) (Queue, error) {
	q := m.Select(kind, now)
	m.MaybeRefill(ctx, kind, q.Len())
	if q.Len() == 0 {
		return q, ErrEmptyQueue
	}
	return q, nil
}

// MaybeRefill starts a background refill for kind when the library needs
// one and none is running. It reports whether a refill was started.
func (m *Manager) MaybeRefill(ctx context.Context, kind library.Kind, queueLen int) bool {
	if m.src == nil {
		return false
	}
	sem, ok := m.inflight[kind]
	if !ok {
		return false
	}
	if !NeedsRefill(m.lib.Items(kind), m.configs[kind], queueLen) {
		return false
	}
	if !sem.TryAcquire(1) {
		return false
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer sem.Release(1)
		m.refill(context.WithoutCancel(ctx), kind)
	}()
	return true
}

// Refill generates and merges one batch for kind synchronously, regardless
// of thresholds. It fails with ErrRefillInFlight if a refill is running.
func (m *Manager) Refill(ctx context.Context, kind library.Kind) (RefillResult, error) {
	if m.src == nil {
		return RefillResult{Kind: kind}, fmt.Errorf("refill %s: no generation source configured", kind)
	}
	sem, ok := m.inflight[kind]
	if !ok {
		return RefillResult{Kind: kind}, fmt.Errorf("refill: unknown kind %q", kind)
	}
	if !sem.TryAcquire(1) {
		return RefillResult{Kind: kind}, ErrRefillInFlight
	}
	defer sem.Release(1)

	res := m.refill(ctx, kind)
	return res, res.Err
}

// Wait blocks until all background refills have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// refill runs one generation and merge. The caller holds the kind's
// semaphore.
func (m *Manager) refill(ctx context.Context, kind library.Kind) RefillResult {
	flag := m.refilling[kind]
	flag.Store(true)
	defer flag.Store(false)

	start := time.Now()
	res := RefillResult{Kind: kind}

	batch, err := m.src.Batch(ctx, kind)
	res.Received = len(batch)
	if err == nil {
		fresh := library.FilterNew(m.lib.Items(kind), batch)
		if dropped := len(batch) - len(fresh); dropped > 0 {
			m.logger.Debug("dropped duplicate items", "kind", kind, "count", dropped)
		}
		res.Added, err = m.lib.Merge(ctx, kind, fresh)
	}
	res.Latency = time.Since(start)
	res.Err = err

	if err != nil {
		m.logger.Warn("refill failed", "kind", kind, "err", err)
	} else {
		m.logger.Info("refill complete", "kind", kind, "received", res.Received, "added", res.Added, "latency", res.Latency.Round(time.Millisecond))
	}

	m.recordRefill(ctx, res)

	m.listenerMu.RLock()
	fn := m.listener
	m.listenerMu.RUnlock()
	if fn != nil {
		fn(res)
	}
	return res
}

func (m *Manager) recordRefill(ctx context.Context, res RefillResult) {
	if m.events == nil {
		return
	}
	data := store.RefillEventData{
		Kind:      string(res.Kind),
		Received:  res.Received,
		Added:     res.Added,
		LatencyMs: res.Latency.Milliseconds(),
		Success:   res.Err == nil,
	}
	if res.Err != nil {
		data.ErrorMessage = res.Err.Error()
	}
	if err := m.events.AppendRefill(ctx, data); err != nil {
		m.logger.Warn("record refill event", "err", err)
	}
}
