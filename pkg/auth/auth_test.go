package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSharedSecretVerifier_Plaintext(t *testing.T) {
	v := NewSharedSecretVerifier("multiverse", "")

	assert.True(t, v.Configured())
	assert.True(t, v.Verify("multiverse"))
	assert.False(t, v.Verify("Multiverse"))
	assert.False(t, v.Verify("multiverse "))
	assert.False(t, v.Verify(""))
}

func TestSharedSecretVerifier_BcryptWins(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	v := NewSharedSecretVerifier("plain-secret", string(hash))

	assert.True(t, v.Verify("hashed-secret"))
	assert.False(t, v.Verify("plain-secret"))
}

func TestSharedSecretVerifier_UnconfiguredRejectsEverything(t *testing.T) {
	v := NewSharedSecretVerifier("", "")

	assert.False(t, v.Configured())
	assert.False(t, v.Verify(""))
	assert.False(t, v.Verify("anything"))
}

func TestHashSecret_RoundTrips(t *testing.T) {
	hash, err := HashSecret("s3cret")
	require.NoError(t, err)
	assert.True(t, NewSharedSecretVerifier("", hash).Verify("s3cret"))
}

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := NewTokenIssuer("key", time.Hour, WithTimeFunc(func() time.Time { return now }))
	require.NoError(t, err)

	token, err := issuer.Issue()
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), token.ExpiresAt)

	claims, err := issuer.Parse(token.Value)
	require.NoError(t, err)
	assert.Equal(t, token.ID, claims.ID)
	assert.Equal(t, AdminSubject, claims.Subject)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	issuer, err := NewTokenIssuer("key", time.Minute, WithTimeFunc(func() time.Time { return clock() }))
	require.NoError(t, err)

	token, err := issuer.Issue()
	require.NoError(t, err)

	clock = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = issuer.Parse(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsForeignSignatureAndAlgorithm(t *testing.T) {
	issuer, err := NewTokenIssuer("key", time.Hour)
	require.NoError(t, err)
	other, err := NewTokenIssuer("other-key", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue()
	require.NoError(t, err)
	_, err = issuer.Parse(foreign.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ID:        "x",
		Issuer:    tokenIssuer,
		Subject:   AdminSubject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenIssuer_EphemeralKeysDiffer(t *testing.T) {
	a, err := NewTokenIssuer("", time.Hour)
	require.NoError(t, err)
	b, err := NewTokenIssuer("", time.Hour)
	require.NoError(t, err)

	token, err := a.Issue()
	require.NoError(t, err)
	_, err = b.Parse(token.Value)
	assert.Error(t, err)

	_, err = NewTokenIssuer("key", 0)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer   abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("abc"))
	assert.Empty(t, BearerToken(""))
}

func TestMemoryDenylist(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewMemoryDenylist()
	d.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "t1", now.Add(time.Minute)))
	require.NoError(t, d.Revoke(ctx, "stale", now.Add(-time.Minute)))

	revoked, _ := d.IsRevoked(ctx, "t1")
	assert.True(t, revoked)
	revoked, _ = d.IsRevoked(ctx, "stale")
	assert.False(t, revoked)

	d.now = func() time.Time { return now.Add(2 * time.Minute) }
	revoked, _ = d.IsRevoked(ctx, "t1")
	assert.False(t, revoked)
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func (c *mapCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *mapCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func TestCacheDenylist(t *testing.T) {
	cache := &mapCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewCacheDenylist(cache)
	d.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "t1", now.Add(time.Hour)))
	assert.Equal(t, time.Hour, cache.ttls[revokedKeyPrefix+"t1"])

	revoked, err := d.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = d.IsRevoked(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "expired", now.Add(-time.Second)))
	for key := range cache.data {
		assert.False(t, strings.HasSuffix(key, "expired"))
	}
}
