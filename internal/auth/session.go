package auth

import (
	"FitTrack/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CookieName = "token"
	// ContextKey is the echo context key the session guard stores *Claims under.
	ContextKey = "user"
)

// Claims is the signed session payload.
type Claims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

type SessionIssuer struct {
	secret       []byte
	ttl          time.Duration
	cookieDomain string
	revocations  RevocationStore
	nowFn        func() time.Time
}

func NewSessionIssuer(cfg *config.Config, revocations RevocationStore) *SessionIssuer {
	if revocations == nil {
		revocations = NoopRevocationStore{}
	}
	return &SessionIssuer{
		secret:       []byte(cfg.JWTSecret),
		ttl:          cfg.SessionTTL,
		cookieDomain: cfg.CookieDomain,
		revocations:  revocations,
		nowFn:        time.Now,
	}
}

// Issue signs a session for user. Every token gets its own ID so a single
// session can be revoked.
func (s *SessionIssuer) Issue(user *User) (*Session, error) {
	now := s.nowFn()
	claims := &Claims{
		ID:       user.ID.Hex(),
		Email:    user.Email,
		Verified: user.IsVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{User: user, Token: token, Claims: claims}, nil
}

// Parse verifies signature, algorithm and expiry, then consults the
// denylist. Every token problem surfaces as ErrInvalidToken; a denylist
// lookup failure is returned as is.
func (s *SessionIssuer) Parse(ctx context.Context, raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrUnauthenticated
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.nowFn),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.RegisteredClaims.ID)
	if err != nil {
		return nil, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Revoke denylists the session until its natural expiry.
func (s *SessionIssuer) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.RegisteredClaims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.revocations.MarkRevoked(ctx, claims.RegisteredClaims.ID, claims.ExpiresAt.Time)
}

// Attach sets the session cookie. SameSite=None so the SPA on another origin
// can send it; browsers require Secure alongside it.
func (s *SessionIssuer) Attach(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.cookieDomain,
		MaxAge:   int(s.ttl.Seconds()),
		Expires:  s.nowFn().Add(s.ttl),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// Clear expires the session cookie on the client.
func (s *SessionIssuer) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.cookieDomain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// ClaimsFromContext returns the claims the session guard attached.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKey).(*Claims)
	return claims, ok && claims != nil
}
