// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

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

	"github.com/danielhkuo/starwars-api/apperr"
	"github.com/danielhkuo/starwars-api/models"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrMalformedToken = errors.New("malformed token")
)

// bcrypt ignores everything past 72 bytes and x/crypto rejects longer input
const maxPasswordBytes = 72

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

// HashPassword returns a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}

// Principal is the authenticated caller of a request
type Principal struct {
	ID      int64
	Subject string
	Role    string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Claims is the JWT payload. Subject carries the username.
type Claims struct {
	Role   string `json:"role"`
	UserID int64  `json:"id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long issued tokens stay valid
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

// Issue signs a token for p
func (ti *TokenIssuer) Issue(p Principal) (string, error) {
	now := ti.now()
	claims := Claims{
		Role:   p.Role,
		UserID: p.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify parses a raw token, with or without a "Bearer " prefix
func (ti *TokenIssuer) Verify(raw string) (Principal, error) {
	token := strings.TrimSpace(raw)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" || strings.Count(token, ".") != 2 {
		return Principal{}, ErrMalformedToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return Principal{ID: claims.UserID, Subject: claims.Subject, Role: claims.Role}, nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller attached to ctx, if any
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// RequireAuth fails with an unauthenticated error when ctx has no caller
func RequireAuth(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return Principal{}, apperr.Unauthenticated("Authentication required")
	}
	return p, nil
}

// RequireAdmin additionally requires the admin role
func RequireAdmin(ctx context.Context) (Principal, error) {
	p, err := RequireAuth(ctx)
	if err != nil {
		return Principal{}, err
	}
	if !p.IsAdmin() {
		return Principal{}, apperr.Forbidden("Admin access required")
	}
	return p, nil
}
