package admin

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/akeren/multiverse-waitlist/internal/log"
	"github.com/akeren/multiverse-waitlist/pkg/auth"
	apperrors "github.com/akeren/multiverse-waitlist/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T, password string) (AdminService, *auth.TokenIssuer) {
	t.Helper()
	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	logger := log.NewLoggerWithWriter(io.Discard, nil)
	return NewAdminService(logger, auth.NewSharedSecretVerifier(password, ""), issuer, auth.NewMemoryDenylist()), issuer
}

func TestLogin(t *testing.T) {
	service, issuer := newTestService(t, "multiverse")

	token, err := service.Login(context.Background(), "multiverse")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)

	claims, err := issuer.Parse(token.Value)
	require.NoError(t, err)
	assert.Equal(t, auth.AdminSubject, claims.Subject)
}

func TestLogin_WrongPassword(t *testing.T) {
	service, _ := newTestService(t, "multiverse")

	for _, presented := range []string{"", "Multiverse", "multiverse "} {
		_, err := service.Login(context.Background(), presented)
		require.Error(t, err)
		assert.Equal(t, apperrors.StatusUnauthorized, apperrors.HTTPStatusCode(err))
		assert.Equal(t, MessageInvalidPassword, apperrors.GetHumanReadableMessage(err))
	}
}

func TestLogin_NoSecretConfigured(t *testing.T) {
	service, _ := newTestService(t, "")

	_, err := service.Login(context.Background(), "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	_, err = service.Login(context.Background(), "anything")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}

func TestLogin_IssueFailureIsInternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := NewMockTokenManager(ctrl)
	tokens.EXPECT().Issue().Return(nil, errors.New("signing failed"))

	service := NewAdminService(log.NewLoggerWithWriter(io.Discard, nil),
		auth.NewSharedSecretVerifier("pw", ""), tokens, auth.NewMemoryDenylist())

	_, err := service.Login(context.Background(), "pw")
	assert.Equal(t, apperrors.StatusInternalServerError, apperrors.HTTPStatusCode(err))
	assert.Equal(t, apperrors.GenericErrorMessage, apperrors.GetHumanReadableMessage(err))
}

func TestAuthenticateAndLogout(t *testing.T) {
	service, _ := newTestService(t, "pw")
	ctx := context.Background()

	token, err := service.Login(ctx, "pw")
	require.NoError(t, err)

	claims, err := service.Authenticate(ctx, token.Value)
	require.NoError(t, err)
	assert.Equal(t, token.ID, claims.ID)

	require.NoError(t, service.Logout(ctx, claims))

	_, err = service.Authenticate(ctx, token.Value)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
	assert.Equal(t, MessageUnauthorized, apperrors.GetHumanReadableMessage(err))
}

func TestAuthenticate_RejectsGarbage(t *testing.T) {
	service, _ := newTestService(t, "pw")

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := service.Authenticate(context.Background(), raw)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized), raw)
	}
}

type failingDenylist struct{}

func (failingDenylist) Revoke(context.Context, string, time.Time) error {
	return errors.New("cache down")
}

func (failingDenylist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("cache down")
}

func TestAuthenticate_FailsClosedWhenDenylistUnreadable(t *testing.T) {
	issuer, err := auth.NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)
	service := NewAdminService(log.NewLoggerWithWriter(io.Discard, nil),
		auth.NewSharedSecretVerifier("pw", ""), issuer, failingDenylist{})

	token, err := service.Login(context.Background(), "pw")
	require.NoError(t, err)

	_, err = service.Authenticate(context.Background(), token.Value)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))

	err = service.Logout(context.Background(), &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{ID: token.ID}})
	assert.Equal(t, MessageLogoutFailed, apperrors.GetHumanReadableMessage(err))
}

func TestLogout_RequiresClaims(t *testing.T) {
	service, _ := newTestService(t, "pw")
	err := service.Logout(context.Background(), nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}
