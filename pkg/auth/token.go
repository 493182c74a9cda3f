package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AdminSubject = "admin"
	tokenIssuer  = "multiverse-waitlist"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Token is a freshly issued admin session.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ID        string    `json:"-"`
}

type Claims struct {
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type TokenOption func(*TokenIssuer)

// WithTimeFunc replaces the clock used for issuing and validating tokens.
func WithTimeFunc(now func() time.Time) TokenOption {
	return func(t *TokenIssuer) {
		t.now = now
	}
}

// NewTokenIssuer signs HS256 tokens. An empty secret gets a random key, so
// tokens do not survive a restart.
func NewTokenIssuer(secret string, ttl time.Duration, opts ...TokenOption) (*TokenIssuer, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("auth: token ttl must be positive, got %s", ttl)
	}

	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("auth: generate signing key: %w", err)
		}
	}

	issuer := &TokenIssuer{secret: key, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer, nil
}

func (t *TokenIssuer) Issue() (*Token, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	id := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    tokenIssuer,
			Subject:   AdminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}

	return &Token{Value: signed, ExpiresAt: expiresAt.UTC().Truncate(time.Second), ID: id}, nil
}

// Parse validates signature, algorithm, issuer, subject and expiry.
func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithSubject(AdminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing token id", ErrInvalidToken)
	}

	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	scheme, value, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}
