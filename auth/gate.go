package auth

import (
	"context"
	"sync"
	"time"
)

// Gate tracks the signed-in principal of one page instance and notifies
// observers whenever it changes.
type Gate struct {
	auth Authenticator
	now  func() time.Time

	mu        sync.Mutex
	current   *Session
	listeners map[int]func(*Session)
	nextID    int
}

// NewGate returns a signed-out gate backed by auth.
func NewGate(auth Authenticator) *Gate {
	return &Gate{
		auth:      auth,
		now:       time.Now,
		listeners: make(map[int]func(*Session)),
	}
}

// Current returns the active session, or nil when signed out. An expired
// session is dropped and reported to observers.
func (g *Gate) Current() *Session {
	g.mu.Lock()
	if g.current != nil && !g.now().Before(g.current.ExpiresAt) {
		g.mu.Unlock()
		g.set(nil)
		return nil
	}
	s := g.current
	g.mu.Unlock()
	return s
}

// Observe registers fn. It is called once right away with the current
// session and again on every change. The returned func unsubscribes.
func (g *Gate) Observe(fn func(*Session)) (unsubscribe func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	cur := g.current
	g.mu.Unlock()

	fn(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.listeners, id)
			g.mu.Unlock()
		})
	}
}

// SignIn authenticates and makes the new session current.
func (g *Gate) SignIn(ctx context.Context, email, password string) (*Session, error) {
	s, err := g.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	g.set(s)
	return s, nil
}

// SignOut revokes the current token and clears the session.
func (g *Gate) SignOut(ctx context.Context) error {
	g.mu.Lock()
	cur := g.current
	g.mu.Unlock()
	if cur == nil {
		return nil
	}
	err := g.auth.SignOut(ctx, cur.Token)
	g.set(nil)
	return err
}

// Sync reconciles the gate with the token the browser presented. A new
// valid token signs in; an empty, invalid or revoked one signs out.
func (g *Gate) Sync(ctx context.Context, token string) {
	if token == "" {
		g.set(nil)
		return
	}
	s, err := g.auth.Verify(ctx, token)
	if err != nil {
		g.set(nil)
		return
	}
	g.set(s)
}

// set swaps the current session and notifies observers outside the lock
// when the principal or token changed.
func (g *Gate) set(s *Session) {
	g.mu.Lock()
	if sameSession(g.current, s) {
		g.mu.Unlock()
		return
	}
	g.current = s
	fns := make([]func(*Session), 0, len(g.listeners))
	for _, fn := range g.listeners {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func sameSession(a, b *Session) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Token == b.Token
}
