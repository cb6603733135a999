package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itanishqshelar/Flashfits-AI/internal/mirror"
)

type Dispatcher interface {
	Dispatch(a mirror.Addition, onResult func(mirror.Result))
}

// Registry owns the live session carts.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	dispatcher Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

func NewRegistry(dispatcher Dispatcher, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions:   make(map[string]*Session),
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Create starts a session with a fresh id.
func (r *Registry) Create() *Session {
	return r.GetOrCreate(uuid.NewString())
}

// GetOrCreate returns the session for id, creating it when it does not
// exist yet.
func (r *Registry) GetOrCreate(id string) *Session {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if s, ok := r.sessions[id]; ok {
		s.touch(now)
		return s
	}

	s := newSession(id, now, r.dispatch)
	r.sessions[id] = s
	r.logger.Debug("session created", zap.String("session_id", id))
	return s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Prune drops sessions that have not been used for maxIdle and returns how
// many were removed.
func (r *Registry) Prune(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			s.unsubscribe()
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info("pruned idle sessions", zap.Int("removed", removed), zap.Int("remaining", len(r.sessions)))
	}
	return removed
}

func (r *Registry) dispatch(a mirror.Addition, onResult func(mirror.Result)) {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.Dispatch(a, onResult)
}
