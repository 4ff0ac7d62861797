package auth

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/precinct/docstore"
)

const testSecret = "test-secret-0123456789"

func setupTestProvider(t *testing.T, opts ...ProviderOption) (*Provider, *docstore.Store) {
	t.Helper()
	store, err := docstore.Open(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	opts = append([]ProviderOption{WithBcryptCost(bcrypt.MinCost)}, opts...)
	p := NewProvider(store, []byte(testSecret), opts...)
	require.NoError(t, p.CreateUser(context.Background(), "Admin@LittleBamiyan.com.au", "correct-horse"))
	return p, store
}

func TestSignInValid(t *testing.T) {
	p, _ := setupTestProvider(t)
	s, err := p.SignIn(context.Background(), "admin@littlebamiyan.com.au", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "admin@littlebamiyan.com.au", s.Email)
	assert.NotEmpty(t, s.Token)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), s.ExpiresAt, 5*time.Second)
}

func TestSignInInvalid(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()

	_, err := p.SignIn(ctx, "admin@littlebamiyan.com.au", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserDuplicate(t *testing.T) {
	p, _ := setupTestProvider(t)
	err := p.CreateUser(context.Background(), "ADMIN@littlebamiyan.com.au", "another-pass")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	p, _ := setupTestProvider(t)
	assert.Error(t, p.CreateUser(context.Background(), "x@example.com", "short"))
	assert.Error(t, p.CreateUser(context.Background(), "not-an-email", "long-enough"))
}

func TestVerify(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()
	s, err := p.SignIn(ctx, "admin@littlebamiyan.com.au", "correct-horse")
	require.NoError(t, err)

	got, err := p.Verify(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.Email, got.Email)

	for name, tok := range map[string]string{
		"empty":     "",
		"malformed": "not.a.jwt",
		"tampered":  s.Token[:len(s.Token)-2] + "xx",
	} {
		_, err := p.Verify(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	p, store := setupTestProvider(t)
	other := NewProvider(store, []byte("another-secret"), WithBcryptCost(bcrypt.MinCost))
	s, err := other.issue("admin@littlebamiyan.com.au")
	require.NoError(t, err)
	_, err = p.Verify(context.Background(), s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsNoneAlg(t *testing.T) {
	p, _ := setupTestProvider(t)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "admin@littlebamiyan.com.au",
		ID:        "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = p.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpired(t *testing.T) {
	now := time.Now()
	p, _ := setupTestProvider(t, WithClock(func() time.Time { return now }), WithTTL(time.Minute))
	s, err := p.SignIn(context.Background(), "admin@littlebamiyan.com.au", "correct-horse")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = p.Verify(context.Background(), s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignOutRevokes(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()
	s, err := p.SignIn(ctx, "admin@littlebamiyan.com.au", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx, s.Token))
	_, err = p.Verify(ctx, s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A fresh sign-in is unaffected.
	s2, err := p.SignIn(ctx, "admin@littlebamiyan.com.au", "correct-horse")
	require.NoError(t, err)
	_, err = p.Verify(ctx, s2.Token)
	assert.NoError(t, err)

	assert.NoError(t, p.SignOut(ctx, "garbage"))
}

func TestPurgeRevoked(t *testing.T) {
	now := time.Now()
	p, store := setupTestProvider(t, WithClock(func() time.Time { return now }), WithTTL(time.Minute))
	ctx := context.Background()
	s, err := p.SignIn(ctx, "admin@littlebamiyan.com.au", "correct-horse")
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx, s.Token))

	n, err := p.PurgeRevoked(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	now = now.Add(time.Hour)
	n, err = p.PurgeRevoked(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	left, err := store.Count(ctx, CollectionRevokedTokens)
	require.NoError(t, err)
	assert.Zero(t, left)
}

type recorder struct {
	mu     sync.Mutex
	events []*Session
}

func (r *recorder) observe(s *Session) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) last() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func TestGateObserveFiresImmediately(t *testing.T) {
	p, _ := setupTestProvider(t)
	g := NewGate(p)
	var r recorder
	unsub := g.Observe(r.observe)
	defer unsub()
	require.Equal(t, 1, r.len())
	assert.Nil(t, r.last())
}

func TestGateSignInSignOutNotify(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()
	g := NewGate(p)
	var r recorder
	unsub := g.Observe(r.observe)
	defer unsub()

	_, err := g.SignIn(ctx, "admin@littlebamiyan.com.au", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, r.len(), "failed sign-in must not notify")

	s, err := g.SignIn(ctx, "admin@littlebamiyan.com.au", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, 2, r.len())
	assert.Equal(t, s.Token, r.last().Token)
	assert.Equal(t, s, g.Current())

	require.NoError(t, g.SignOut(ctx))
	require.Equal(t, 3, r.len())
	assert.Nil(t, r.last())
	assert.Nil(t, g.Current())

	_, err = p.Verify(ctx, s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGateUnsubscribe(t *testing.T) {
	p, _ := setupTestProvider(t)
	g := NewGate(p)
	var r recorder
	unsub := g.Observe(r.observe)
	unsub()
	unsub()

	_, err := g.SignIn(context.Background(), "admin@littlebamiyan.com.au", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, 1, r.len())
}

func TestGateSync(t *testing.T) {
	p, _ := setupTestProvider(t)
	ctx := context.Background()
	s, err := p.SignIn(ctx, "admin@littlebamiyan.com.au", "correct-horse")
	require.NoError(t, err)

	g := NewGate(p)
	var r recorder
	defer g.Observe(r.observe)()

	g.Sync(ctx, s.Token)
	require.Equal(t, 2, r.len())
	require.NotNil(t, g.Current())

	g.Sync(ctx, s.Token)
	assert.Equal(t, 2, r.len(), "same token must not notify")

	// Revocation elsewhere is picked up on the next sync.
	require.NoError(t, p.SignOut(ctx, s.Token))
	g.Sync(ctx, s.Token)
	assert.Equal(t, 3, r.len())
	assert.Nil(t, g.Current())

	g.Sync(ctx, "")
	assert.Equal(t, 3, r.len())
}

func TestGateCurrentDropsExpired(t *testing.T) {
	p, _ := setupTestProvider(t)
	g := NewGate(p)
	var r recorder
	defer g.Observe(r.observe)()

	_, err := g.SignIn(context.Background(), "admin@littlebamiyan.com.au", "correct-horse")
	require.NoError(t, err)
	g.now = func() time.Time { return time.Now().Add(DefaultTTL + time.Minute) }

	assert.Nil(t, g.Current())
	assert.Equal(t, 3, r.len())
	assert.Nil(t, r.last())
}

type failingAuth struct{ Authenticator }

func (failingAuth) SignOut(context.Context, string) error { return errors.New("store down") }

func TestGateSignOutClearsEvenOnError(t *testing.T) {
	p, _ := setupTestProvider(t)
	g := NewGate(failingAuth{p})
	_, err := g.SignIn(context.Background(), "admin@littlebamiyan.com.au", "correct-horse")
	require.NoError(t, err)

	assert.Error(t, g.SignOut(context.Background()))
	assert.Nil(t, g.Current())
}
