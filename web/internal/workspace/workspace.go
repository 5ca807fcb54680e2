package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/Astemirdum/library-web/web/internal/catalog"
	"github.com/Astemirdum/library-web/web/internal/circulation"
	"github.com/Astemirdum/library-web/web/internal/detail"
	"github.com/Astemirdum/library-web/web/internal/session"
	"github.com/Astemirdum/library-web/web/internal/toast"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	CookieName = "ws"

	DefaultMaxWorkspaces = 10000
)

// Workspace is the UI state of one browser.
type Workspace struct {
	ID          string
	Identity    session.Identity
	Toasts      *toast.Queue
	Catalog     *catalog.Session
	Detail      *detail.Session
	Circulation *circulation.Session

	mu       sync.Mutex
	lastSeen time.Time
}

// Context carries the workspace's session token for backend calls.
func (w *Workspace) Context(ctx context.Context) context.Context {
	return session.WithToken(ctx, w.Identity.Token())
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Close stops every pending fetch of the workspace.
func (w *Workspace) Close() {
	if w.Catalog != nil {
		w.Catalog.Close()
	}
	if w.Detail != nil {
		w.Detail.Close()
	}
	if w.Circulation != nil {
		w.Circulation.Close()
	}
}

// Factory builds the sessions of a workspace for an identity.
type Factory func(id session.Identity, toasts *toast.Queue) (*Workspace, error)

// Store keeps at most size workspaces; past that the least recently used
// one is closed and dropped.
type Store struct {
	mu      sync.Mutex
	items   *lru.Cache[string, *Workspace]
	factory Factory
	ttl     time.Duration
	log     *zap.Logger
	now     func() time.Time
}

func NewStore(factory Factory, size int, ttl time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if size <= 0 {
		size = DefaultMaxWorkspaces
	}
	items, err := lru.NewWithEvict(size, func(_ string, ws *Workspace) {
		ws.Close()
	})
	if err != nil {
		// only a non-positive size fails
		panic(err)
	}
	return &Store{
		items:   items,
		factory: factory,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
	}
}

// Get returns the workspace for id, creating it when id is unknown. A
// workspace built for another token is replaced; pending toasts carry over.
func (s *Store) Get(id string, identity session.Identity) (*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ws, ok := s.items.Get(id)
	if ok && ws.Identity.Token() == identity.Token() {
		ws.touch(now)
		return ws, nil
	}

	toasts := toast.NewQueue()
	if ok {
		ws.Close()
		for _, t := range ws.Toasts.Drain() {
			toasts.Push(t.Kind, t.Key, t.Args)
		}
		s.log.Debug("workspace identity changed", zap.String("ws", id))
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	fresh, err := s.factory(identity, toasts)
	if err != nil {
		return nil, err
	}
	fresh.ID = id
	fresh.Identity = identity
	fresh.Toasts = toasts
	fresh.touch(now)
	if s.items.Add(id, fresh) {
		s.log.Debug("least recently used workspace evicted", zap.Int("size", s.items.Len()))
	}
	return fresh, nil
}

// Sweep evicts workspaces idle for longer than the TTL.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for _, id := range s.items.Keys() {
		ws, ok := s.items.Peek(id)
		if ok && ws.idleSince().Before(cutoff) {
			s.items.Remove(id)
			evicted++
		}
	}
	if evicted > 0 {
		s.log.Info("workspaces evicted", zap.Int("count", evicted), zap.Int("left", s.items.Len()))
	}
	return evicted
}

// Run sweeps periodically until ctx is done.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Len()
}

// Close drops every workspace.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Purge()
}
