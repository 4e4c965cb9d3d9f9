package service

import (
	"context"
	"sync"
	"time"

	"github.com/ncobase/taskdesk/biz/task/data/repository"
	"github.com/ncobase/taskdesk/biz/task/store"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/ncobase/taskdesk/types"
)

// Workspace keeps one remote store per signed-in session. A store is
// loaded on the first request of its session and dropped on sign-out, or
// once it has gone unused for the session lifetime.
type Workspace struct {
	repo     repository.Repository
	sessions store.SessionCloser
	notifier store.Notifier
	clock    types.Clock
	ttl      time.Duration

	mu     sync.Mutex
	stores map[string]*entry
}

type entry struct {
	store    *store.Remote
	lastSeen time.Time
}

// NewWorkspace creates an empty workspace. A store idle for longer than
// ttl belongs to an expired session and is evicted; zero keeps stores
// until sign-out.
func NewWorkspace(repo repository.Repository, sessions store.SessionCloser, n store.Notifier, clock types.Clock, ttl time.Duration) *Workspace {
	if clock == nil {
		clock = types.SystemClock
	}
	return &Workspace{
		repo:     repo,
		sessions: sessions,
		notifier: n,
		clock:    clock,
		ttl:      ttl,
		stores:   make(map[string]*entry),
	}
}

// For returns the loaded store of p. A store whose first load failed is
// not kept, so the next request loads again.
func (w *Workspace) For(ctx context.Context, p store.Principal) (*store.Remote, error) {
	now := w.clock.Now()
	w.mu.Lock()
	w.evict(ctx, now)
	e, ok := w.stores[p.SessionID]
	if !ok {
		e = &entry{store: store.NewRemote(w.repo, w.sessions, w.notifier, w.clock)}
		w.stores[p.SessionID] = e
	}
	e.lastSeen = now
	s := e.store
	w.mu.Unlock()

	if ok && s.Principal() == p {
		return s, nil
	}
	if err := s.Load(ctx, p); err != nil {
		w.drop(p.SessionID, s)
		return nil, err
	}
	return s, nil
}

// SignOut ends the session through its store, which clears the rows and
// reports the sign-out. A session with no store yet gets one first.
func (w *Workspace) SignOut(ctx context.Context, userID, sessionID string) error {
	p := store.Principal{UserID: userID, SessionID: sessionID}

	var s *store.Remote
	w.mu.Lock()
	e, ok := w.stores[sessionID]
	if ok {
		s = e.store
	}
	w.mu.Unlock()
	if !ok {
		s = store.NewRemote(w.repo, w.sessions, w.notifier, w.clock)
		if err := s.Load(ctx, p); err != nil {
			logger.Debug(ctx, "Signing out without loaded tasks", "user_id", userID, "error", err)
		}
	}

	if err := s.SignOut(ctx); err != nil {
		return err
	}
	w.drop(sessionID, s)
	return nil
}

// Len returns the number of live stores.
func (w *Workspace) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.stores)
}

// Sweep evicts the stores of expired sessions.
func (w *Workspace) Sweep(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.evict(ctx, w.clock.Now())
}

// evict must be called with mu held.
func (w *Workspace) evict(ctx context.Context, now time.Time) {
	if w.ttl <= 0 {
		return
	}
	for id, e := range w.stores {
		if now.Sub(e.lastSeen) > w.ttl {
			delete(w.stores, id)
			logger.Debug(ctx, "Evicted idle task store", "session_id", id, "user_id", e.store.Principal().UserID)
		}
	}
}

func (w *Workspace) drop(sessionID string, s *store.Remote) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e, ok := w.stores[sessionID]; ok && e.store == s {
		delete(w.stores, sessionID)
	}
}
