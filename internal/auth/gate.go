// Package auth is a local stand-in for a login service. Credentials are
// checked against a fixed rule chain; there is no user database.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/joescharf/todo/internal/models"
	"github.com/joescharf/todo/internal/store"
)

const (
	// Issuer is the iss claim of every token minted by a Gate.
	Issuer = "todo"
	// DefaultTokenSecret signs tokens when no secret is configured.
	DefaultTokenSecret = "todo-local-secret"

	minPasswordLength = 8
)

// Validation messages, in rule order.
const (
	MsgUsernameRequired = "Username is required."
	MsgPasswordRequired = "Password is required."
	MsgPasswordTooShort = "Password must be at least 8 characters."
	MsgPasswordUpper    = "Password must contain an uppercase letter."
	MsgPasswordNumber   = "Password must contain a number."
	MsgPasswordSpecial  = "Password must contain a special character."
)

// ErrInvalidToken is returned by VerifyToken for tokens this gate did not mint.
var ErrInvalidToken = errors.New("invalid token")

// Config holds Gate settings.
type Config struct {
	// Latency simulates a remote login round trip.
	Latency     time.Duration
	TokenSecret string
}

// Gate tracks the single session of the process. The in-memory state is
// authoritative; the store holds a mirror only when remember-me was set.
type Gate struct {
	kv     store.Store
	cfg    Config
	secret []byte
	log    zerolog.Logger
	now    func() time.Time

	mu            sync.Mutex
	authenticated bool
	user          string
	hasUser       bool
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gate) { g.log = l }
}

// WithClock overrides time.Now for issued-at claims.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// NewGate returns a logged-out gate backed by kv.
func NewGate(kv store.Store, cfg Config, opts ...Option) *Gate {
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = DefaultTokenSecret
	}
	g := &Gate{
		kv:     kv,
		cfg:    cfg,
		secret: []byte(cfg.TokenSecret),
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Validate runs the credential rule chain and returns the first failing
// message, or "" when the credentials are acceptable.
func Validate(creds models.Credentials) string {
	if strings.TrimSpace(creds.Username) == "" {
		return MsgUsernameRequired
	}
	pw := creds.Password
	if strings.TrimSpace(pw) == "" {
		return MsgPasswordRequired
	}
	// Runes, not UTF-16 units: an emoji counts once.
	if utf8.RuneCountInString(pw) < minPasswordLength {
		return MsgPasswordTooShort
	}

	var upper, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			special = true
		}
	}
	switch {
	case !upper:
		return MsgPasswordUpper
	case !digit:
		return MsgPasswordNumber
	case !special:
		return MsgPasswordSpecial
	}
	return ""
}

// Login validates creds and, on success, starts a session with a freshly
// minted token. The token and username are persisted only with RememberMe.
func (g *Gate) Login(ctx context.Context, creds models.Credentials) models.AuthResult {
	if g.cfg.Latency > 0 {
		t := time.NewTimer(g.cfg.Latency)
		select {
		case <-ctx.Done():
			t.Stop()
			return models.AuthResult{ErrorMessage: "Login cancelled."}
		case <-t.C:
		}
	}

	if msg := Validate(creds); msg != "" {
		g.log.Debug().Str("username", creds.Username).Str("reason", msg).Msg("login rejected")
		return models.AuthResult{ErrorMessage: msg}
	}

	token, err := g.mint(creds.Username)
	if err != nil {
		g.log.Error().Err(err).Msg("mint token")
		return models.AuthResult{ErrorMessage: "Could not create a session."}
	}

	g.mu.Lock()
	g.authenticated = true
	g.user = creds.Username
	g.hasUser = true
	g.mu.Unlock()

	if creds.RememberMe {
		g.kv.Set(ctx, store.KeyAuthToken, token)
		g.kv.Set(ctx, store.KeyAuthUser, creds.Username)
	}

	g.log.Info().Str("username", creds.Username).Bool("remember_me", creds.RememberMe).Msg("logged in")
	return models.AuthResult{Success: true, Token: token, Username: creds.Username}
}

// Logout clears the session and removes any persisted mirror.
func (g *Gate) Logout(ctx context.Context) {
	g.mu.Lock()
	g.authenticated = false
	g.user = ""
	g.hasUser = false
	g.mu.Unlock()

	g.kv.Remove(ctx, store.KeyAuthToken)
	g.kv.Remove(ctx, store.KeyAuthUser)
	g.log.Info().Msg("logged out")
}

// IsAuthenticated reports whether a session is active, rehydrating it from
// a persisted token when the in-memory flag is not set.
func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.authenticated {
		return true
	}
	token, ok := g.kv.Get(ctx, store.KeyAuthToken)
	if !ok || token == "" {
		return false
	}

	g.authenticated = true
	g.user, g.hasUser = g.kv.Get(ctx, store.KeyAuthUser)
	g.log.Debug().Str("username", g.user).Msg("session restored")
	return true
}

// CurrentUser returns the in-memory username, falling back to the
// persisted one.
func (g *Gate) CurrentUser(ctx context.Context) (string, bool) {
	g.mu.Lock()
	user, ok := g.user, g.hasUser
	g.mu.Unlock()

	if ok {
		return user, true
	}
	return g.kv.Get(ctx, store.KeyAuthUser)
}

// VerifyToken checks a token minted by this gate and returns its subject.
func (g *Gate) VerifyToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return g.secret, nil
		},
		jwt.WithIssuer(Issuer),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func (g *Gate) mint(username string) (string, error) {
	now := g.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:       ulid.Make().String(),
		Issuer:   Issuer,
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(now),
	})
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
