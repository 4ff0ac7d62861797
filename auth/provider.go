// Package auth implements email/password sign-in for the site's admins and
// the per-page session gate that collapses it to an admin flag.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/precinct/docstore"
)

// Collections owned by the provider.
const (
	CollectionUsers         = "users"
	CollectionRevokedTokens = "revoked_tokens"
)

// DefaultTTL is how long a signed-in session stays valid.
const DefaultTTL = 12 * time.Hour

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInvalidToken is returned for malformed, expired, forged or revoked tokens.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrUserExists is returned by CreateUser for a taken email.
	ErrUserExists = errors.New("auth: user already exists")
)

// Session is an authenticated principal. Every principal is an admin.
type Session struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Authenticator is what a Gate needs from an identity provider.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	Verify(ctx context.Context, token string) (*Session, error)
	SignOut(ctx context.Context, token string) error
}

// Provider stores users in the document store and issues HS256 JWTs.
type Provider struct {
	store  *docstore.Store
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
	dummy  []byte
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithTTL overrides the session lifetime.
func WithTTL(d time.Duration) ProviderOption {
	return func(p *Provider) {
		if d > 0 {
			p.ttl = d
		}
	}
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) ProviderOption {
	return func(p *Provider) { p.cost = cost }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ProviderOption {
	return func(p *Provider) { p.now = now }
}

// NewProvider returns a provider signing tokens with secret.
func NewProvider(store *docstore.Store, secret []byte, opts ...ProviderOption) *Provider {
	p := &Provider{
		store:  store,
		secret: secret,
		ttl:    DefaultTTL,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	// Compared against when the email is unknown so both failures cost the same.
	p.dummy, _ = bcrypt.GenerateFromPassword([]byte("precinct-dummy-password"), p.cost)
	return p
}

type claims struct {
	jwt.RegisteredClaims
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers an admin account.
func (p *Provider) CreateUser(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("auth: invalid email %q", email)
	}
	if len(password) < 8 {
		return errors.New("auth: password must be at least 8 characters")
	}
	if _, err := p.store.Get(ctx, CollectionUsers, email); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	return p.store.Set(ctx, CollectionUsers, email, docstore.Fields{
		"email":        email,
		"passwordHash": string(hash),
		"createdAt":    p.now().UTC().Format(time.RFC3339),
	})
}

// SignIn checks credentials and issues a session token.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	doc, err := p.store.Get(ctx, CollectionUsers, email)
	if errors.Is(err, docstore.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(p.dummy, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(doc.Fields.String("passwordHash")), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p.issue(email)
}

func (p *Provider) issue(email string) (*Session, error) {
	now := p.now()
	exp := now.Add(p.ttl)
	c := claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   email,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return &Session{Email: email, Token: token, ExpiresAt: c.ExpiresAt.Time}, nil
}

func (p *Provider) parse(token string) (*claims, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" || c.ID == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}

// Verify returns the session a token stands for.
func (p *Provider) Verify(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	c, err := p.parse(token)
	if err != nil {
		return nil, err
	}
	_, err = p.store.Get(ctx, CollectionRevokedTokens, c.ID)
	if err == nil {
		return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return nil, err
	}
	return &Session{Email: c.Subject, Token: token, ExpiresAt: c.ExpiresAt.Time}, nil
}

// SignOut revokes a token. Signing out an invalid token is a no-op.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	c, err := p.parse(token)
	if err != nil {
		return nil
	}
	return p.store.Set(ctx, CollectionRevokedTokens, c.ID, docstore.Fields{
		"expiresAt": c.ExpiresAt.Time.UTC().Format(time.RFC3339),
	})
}

// PurgeRevoked drops revocation records whose tokens have expired anyway.
func (p *Provider) PurgeRevoked(ctx context.Context) (int, error) {
	docs, err := p.store.List(ctx, CollectionRevokedTokens)
	if err != nil {
		return 0, err
	}
	now := p.now()
	n := 0
	for _, d := range docs {
		exp, err := time.Parse(time.RFC3339, d.Fields.String("expiresAt"))
		if err != nil || exp.After(now) {
			continue
		}
		if err := p.store.Delete(ctx, CollectionRevokedTokens, d.ID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
