package site

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/eringen/precinct/auth"
	"github.com/eringen/precinct/content"
)

// Instance is the state owner for one browser page load. Its methods are
// serialized; each returns a snapshot of the state after the event.
type Instance struct {
	ID string

	coord *Coordinator
	gate  *auth.Gate
	log   *zap.Logger

	mu    sync.Mutex
	state State

	// Gate callbacks can fire while mu is held, so they only queue here.
	pmu         sync.Mutex
	pending     []Action
	unsubscribe func()
}

// NewInstance creates an instance observing gate.
func NewInstance(id string, gate *auth.Gate, coord *Coordinator, log *zap.Logger) *Instance {
	if log == nil {
		log = zap.NewNop()
	}
	in := &Instance{
		ID:    id,
		coord: coord,
		gate:  gate,
		log:   log.With(zap.String("instance", id)),
		state: NewState(),
	}
	in.unsubscribe = gate.Observe(in.onSession)
	return in
}

func (in *Instance) onSession(s *auth.Session) {
	a := SessionChanged{}
	if s != nil {
		a = SessionChanged{SignedIn: true, Email: s.Email}
	}
	in.pmu.Lock()
	in.pending = append(in.pending, a)
	in.pmu.Unlock()
}

func (in *Instance) drain(s State) State {
	in.pmu.Lock()
	actions := in.pending
	in.pending = nil
	in.pmu.Unlock()
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

func (in *Instance) do(ctx context.Context, fn func(State) (State, error)) (State, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	prev := in.state.Page
	// Current drops a session whose token expired since the last event.
	in.gate.Current()
	s := in.drain(in.state)
	s, err := fn(s)
	s = in.drain(s)
	if s.Page == PageAdmin && prev != PageAdmin {
		s, _ = in.coord.RefreshStats(ctx, s)
	}
	in.state = s
	return s, err
}

// State returns a snapshot of the current state.
func (in *Instance) State() State {
	s, _ := in.do(context.Background(), func(s State) (State, error) { return s, nil })
	return s
}

// Dispatch applies a navigation action.
func (in *Instance) Dispatch(ctx context.Context, a Action) State {
	s, _ := in.do(ctx, func(s State) (State, error) { return Reduce(s, a), nil })
	return s
}

// Load bootstraps the collections and counts the page view.
func (in *Instance) Load(ctx context.Context) (State, error) {
	return in.do(ctx, func(s State) (State, error) { return in.coord.Load(ctx, s) })
}

// Sync reconciles the session with the browser's token.
func (in *Instance) Sync(ctx context.Context, token string) State {
	s, _ := in.do(ctx, func(s State) (State, error) {
		in.gate.Sync(ctx, token)
		return s, nil
	})
	return s
}

// Login signs in and opens the dashboard, or shows the inline error.
func (in *Instance) Login(ctx context.Context, email, password string) (State, *auth.Session, error) {
	var sess *auth.Session
	s, err := in.do(ctx, func(s State) (State, error) {
		var err error
		sess, err = in.gate.SignIn(ctx, email, password)
		if err != nil {
			in.log.Info("login failed", zap.Error(err))
			return Reduce(s, LoginFailed{Message: MsgInvalidCredentials}), err
		}
		s = in.drain(s)
		return Reduce(s, LoginSucceeded{}), nil
	})
	return s, sess, err
}

// Logout signs out and returns to the home page.
func (in *Instance) Logout(ctx context.Context) (State, error) {
	return in.do(ctx, func(s State) (State, error) {
		err := in.gate.SignOut(ctx)
		if err != nil {
			in.log.Error("logout error", zap.Error(err))
		}
		s = in.drain(s)
		return Reduce(s, Navigate{Page: PageHome}), err
	})
}

// OpenPost shows a post and records the view.
func (in *Instance) OpenPost(ctx context.Context, id string) (State, error) {
	return in.do(ctx, func(s State) (State, error) { return in.coord.OpenPost(ctx, s, id) })
}

// SaveBusiness submits the business form.
func (in *Instance) SaveBusiness(ctx context.Context, draft content.Business) (State, error) {
	return in.do(ctx, func(s State) (State, error) { return in.coord.SaveBusiness(ctx, s, draft) })
}

// DeleteBusiness removes a listing once confirmed.
func (in *Instance) DeleteBusiness(ctx context.Context, id string, confirmed bool) (State, error) {
	return in.do(ctx, func(s State) (State, error) { return in.coord.DeleteBusiness(ctx, s, id, confirmed) })
}

// SaveBlog submits the post form.
func (in *Instance) SaveBlog(ctx context.Context, draft content.BlogPost) (State, error) {
	return in.do(ctx, func(s State) (State, error) { return in.coord.SaveBlog(ctx, s, draft) })
}

// DeleteBlog removes a post once confirmed.
func (in *Instance) DeleteBlog(ctx context.Context, id string, confirmed bool) (State, error) {
	return in.do(ctx, func(s State) (State, error) { return in.coord.DeleteBlog(ctx, s, id, confirmed) })
}

// Close detaches the instance from its auth gate. It is safe to call twice.
func (in *Instance) Close() {
	in.unsubscribe()
}
