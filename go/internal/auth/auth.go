// Package auth resolves the acting user from a signed bearer token. The draft
// engine trusts whatever identity this package puts on the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type ctxKey struct{}

type claims struct {
	jwt.RegisteredClaims
}

// Authenticator validates HS256 tokens whose subject is a user id.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Issue signs a token for userID valid for ttl from now.
func (a *Authenticator) Issue(userID uuid.UUID, now time.Time, ttl time.Duration) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := tok.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse returns the user id carried by a valid token.
func (a *Authenticator) Parse(tokenStr string) (uuid.UUID, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return uuid.Nil, fmt.Errorf("%w: bad token", ErrUnauthenticated)
	}
	cl, ok := tok.Claims.(*claims)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: bad claims", ErrUnauthenticated)
	}
	userID, err := uuid.Parse(cl.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", ErrUnauthenticated)
	}
	return userID, nil
}

// Middleware rejects requests without a valid token. Browsers cannot set
// headers on websocket upgrades, so a token query parameter is also read.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			http.Error(w, `{"error":"not authorized"}`, http.StatusUnauthorized)
			return
		}
		userID, err := a.Parse(tokenStr)
		if err != nil {
			http.Error(w, `{"error":"bad token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserFrom returns the authenticated user on ctx.
func UserFrom(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return userID, nil
}
