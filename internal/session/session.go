package session

import (
	"context"
	"sync"
	"time"

	"github.com/itanishqshelar/Flashfits-AI/internal/cart"
	"github.com/itanishqshelar/Flashfits-AI/internal/middleware"
	"github.com/itanishqshelar/Flashfits-AI/internal/mirror"
)

// Session is one shopper's cart plus the state the storefront shows
// around it.
type Session struct {
	ID    string
	Store *cart.Store

	mu       sync.Mutex
	userID   string
	notice   string
	lastSeen time.Time

	// addMu serializes AddItem so the subscriber sees the metadata of the
	// addition that triggered it.
	addMu   sync.Mutex
	pending addMeta

	unsubscribe func()
}

type addMeta struct {
	productID     string
	correlationID string
}

// View is the JSON shape of a session cart.
type View struct {
	SessionID string `json:"sessionId"`
	cart.State
	Summary cart.Summary `json:"summary"`
	Notice  string       `json:"notice,omitempty"`
}

func newSession(id string, now time.Time, dispatch func(mirror.Addition, func(mirror.Result))) *Session {
	s := &Session{ID: id, Store: cart.NewStore(), lastSeen: now}
	s.unsubscribe = s.Store.Subscribe(func(c cart.Change) {
		if c.Action != cart.ActionAddItem {
			return
		}
		a := mirror.FromLine(s.ID, s.UserID(), c.Line)
		a.ProductID = s.pending.productID
		a.CorrelationID = s.pending.correlationID
		dispatch(a, s.applyResult)
	})
	return s
}

// AddItem adds one unit to the cart. productID is the catalog id of the
// product, when known.
func (s *Session) AddItem(ctx context.Context, in cart.ItemInput, productID string) {
	s.addMu.Lock()
	defer s.addMu.Unlock()

	s.pending = addMeta{productID: productID, correlationID: middleware.GetCorrelationID(ctx)}
	s.Store.AddItem(in)
	s.pending = addMeta{}
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// SetUserID records the signed-in user. An empty id leaves the current one.
func (s *Session) SetUserID(uid string) {
	if uid == "" {
		return
	}
	s.mu.Lock()
	s.userID = uid
	s.mu.Unlock()
}

func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *Session) View() View {
	st := s.Store.State()
	return View{
		SessionID: s.ID,
		State:     st,
		Summary:   cart.Quote(st.Total),
		Notice:    s.Notice(),
	}
}

func (s *Session) applyResult(res mirror.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The notice is about signing in. Once an addition went out with a
	// user id, failures of other sinks must not keep it up.
	switch {
	case res.Unauthenticated:
		s.notice = mirror.SignInNotice
	case res.Err == nil, res.Addition.UserID != "":
		s.notice = ""
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
