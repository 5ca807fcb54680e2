// Package remotelist keeps a query, the result the backend returned for it and
// the fetch lifecycle in between. Every query change bumps a generation counter:
// the in-flight fetch is cancelled and, should it still answer, its result is
// dropped. Search-style changes can be debounced so a burst of keystrokes turns
// into a single request.
package remotelist

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type State uint8

const (
	Idle State = iota
	Loading
	Ready
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

const DefaultDebounce = 300 * time.Millisecond

type Fetcher[Q, R any] func(ctx context.Context, q Q) (R, error)

// Snapshot is a consistent copy of the list state.
type Snapshot[Q, R any] struct {
	Query      Q
	Result     R
	State      State
	Err        error
	Generation uint64
}

func (s Snapshot[Q, R]) Loading() bool { return s.State == Loading }

type options struct {
	debounce time.Duration
	timeout  time.Duration
	base     context.Context
	log      *zap.Logger
}

type Option func(*options)

func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.debounce = d
		}
	}
}

// WithTimeout bounds every fetch.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithContext sets the parent of every fetch context (e.g. one carrying the session token).
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.base = ctx }
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// List is safe for concurrent use. A mutate func passed to Update must not
// write into slices shared with earlier queries: replace them instead.
type List[Q, R any] struct {
	mu     sync.Mutex
	fetch  Fetcher[Q, R]
	opts   options
	base   context.Context
	stop   context.CancelFunc
	query  Q
	result R
	state  State
	err    error
	gen    uint64
	cancel context.CancelFunc
	timer  *time.Timer
	done   chan struct{}
	closed bool
}

func New[Q, R any](fetch Fetcher[Q, R], initial Q, opts ...Option) *List[Q, R] {
	o := options{
		debounce: DefaultDebounce,
		base:     context.Background(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	base, stop := context.WithCancel(o.base)
	return &List[Q, R]{
		fetch: fetch,
		opts:  o,
		base:  base,
		stop:  stop,
		query: initial,
		state: Idle,
	}
}

// Update applies mutate to the query. When mutate reports a change the list
// moves to Loading and fetches, right away or after the quiet period.
func (l *List[Q, R]) Update(mutate func(q *Q) bool, debounced bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	if !mutate(&l.query) {
		return false
	}
	l.schedule(debounced)
	return true
}

// Refresh refetches the current query immediately.
func (l *List[Q, R]) Refresh() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.schedule(false)
}

func (l *List[Q, R]) Query() Q {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

func (l *List[Q, R]) View() Snapshot[Q, R] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Settle waits until the latest generation resolves and returns the state it
// resolved to. An Idle list is returned as is.
func (l *List[Q, R]) Settle(ctx context.Context) (Snapshot[Q, R], error) {
	for {
		l.mu.Lock()
		if l.state != Loading || l.done == nil {
			s := l.snapshot()
			l.mu.Unlock()
			return s, nil
		}
		done := l.done
		l.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return l.View(), ctx.Err()
		}
	}
}

// Patch edits the cached result in place. It only applies to a Ready list.
func (l *List[Q, R]) Patch(fn func(r *R) bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Ready {
		return false
	}
	return fn(&l.result)
}

// Close cancels pending work; the list stops fetching for good.
func (l *List[Q, R]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.gen++
	l.abort()
	l.stop()
	if l.done != nil {
		close(l.done)
		l.done = nil
	}
}

func (l *List[Q, R]) snapshot() Snapshot[Q, R] {
	return Snapshot[Q, R]{
		Query:      l.query,
		Result:     l.result,
		State:      l.state,
		Err:        l.err,
		Generation: l.gen,
	}
}

// abort drops the pending timer and the in-flight fetch. Caller holds mu.
func (l *List[Q, R]) abort() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// schedule starts a new generation. Caller holds mu.
func (l *List[Q, R]) schedule(debounced bool) {
	l.gen++
	gen := l.gen
	l.abort()
	if l.state != Loading || l.done == nil {
		l.done = make(chan struct{})
	}
	l.state = Loading
	l.err = nil

	if debounced && l.opts.debounce > 0 {
		l.timer = time.AfterFunc(l.opts.debounce, func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if gen != l.gen || l.closed {
				return
			}
			l.timer = nil
			l.launch(gen)
		})
		return
	}
	l.launch(gen)
}

// launch runs the fetch for gen. Caller holds mu.
func (l *List[Q, R]) launch(gen uint64) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if l.opts.timeout > 0 {
		ctx, cancel = context.WithTimeout(l.base, l.opts.timeout)
	} else {
		ctx, cancel = context.WithCancel(l.base)
	}
	l.cancel = cancel
	q := l.query

	go func() {
		defer cancel()
		r, err := l.fetch(ctx, q)
		l.resolve(gen, r, err)
	}()
}

func (l *List[Q, R]) resolve(gen uint64, r R, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen || l.closed {
		return
	}
	l.cancel = nil
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			l.opts.log.Warn("fetch failed", zap.Uint64("generation", gen), zap.Error(err))
		}
		var zero R
		l.result = zero
		l.state = Errored
		l.err = err
	} else {
		l.result = r
		l.state = Ready
		l.err = nil
	}
	if l.done != nil {
		close(l.done)
		l.done = nil
	}
}
