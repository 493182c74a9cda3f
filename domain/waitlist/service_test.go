package waitlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akeren/multiverse-waitlist/internal/models"
	apperrors "github.com/akeren/multiverse-waitlist/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

func newServiceWithMock(t *testing.T) (WaitlistService, *MockWaitlistRepository) {
	ctrl := gomock.NewController(t)
	repo := NewMockWaitlistRepository(ctrl)
	return NewWaitlistService(newTestLogger(), repo), repo
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM \n"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestValidateEmail(t *testing.T) {
	cases := map[string]bool{
		"user@example.com": true,
		"a@b":              true,
		"":                 false,
		"not-an-email":     false,
		"a@b\x00":          false,
		"a@b\xff":          false,
		"a\u0007@b.c":      false,
		"üser@example.com": true,
	}
	for email, ok := range cases {
		t.Run(email, func(t *testing.T) {
			err := ValidateEmail(email)
			if ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateEmail_RejectsOverlongAddress(t *testing.T) {
	long := make([]byte, 321)
	for i := range long {
		long[i] = 'a'
	}
	long[10] = '@'
	assert.Error(t, ValidateEmail(string(long)))
}

func TestSubmitEntry_RejectsNULBeforeStorage(t *testing.T) {
	service, _ := newServiceWithMock(t)

	_, err := service.SubmitEntry(context.Background(), &SubmitWaitlistEntryRequest{Email: "a@b\x00"})
	require.Error(t, err)
	assert.Equal(t, apperrors.StatusBadRequest, apperrors.HTTPStatusCode(err))
}

func TestToWaitlistEntryModel_CleansFreeTextFields(t *testing.T) {
	entry := ToWaitlistEntryModel(&SubmitWaitlistEntryRequest{
		UTMSource:   "x\x00y",
		UTMMedium:   " social\t",
		UTMCampaign: "launch\xff",
		Country:     "BR",
		City:        "S\xe3o Paulo",
	}, "user@example.com")

	assert.Equal(t, "xy", entry.UTMSource)
	assert.Equal(t, "social", entry.UTMMedium)
	assert.Equal(t, "launch", entry.UTMCampaign)
	assert.Equal(t, "BR", entry.Country)
	assert.Equal(t, "So Paulo", entry.City)
	assert.Equal(t, "user@example.com", entry.Email)
}

func TestSubmitEntry_StoresNormalizedEmail(t *testing.T) {
	service, repo := newServiceWithMock(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo.EXPECT().
		InsertWaitlistEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
			assert.Equal(t, "user@example.com", entry.Email)
			assert.Equal(t, "landing_page", entry.Source)
			assert.Equal(t, "active", entry.Status)
			assert.Equal(t, "newsletter", entry.UTMSource)
			assert.Equal(t, "Lagos", entry.City)
			stored := *entry
			stored.ID = 7
			stored.CreatedAt = created
			return &stored, nil
		})

	resp, err := service.SubmitEntry(context.Background(), &SubmitWaitlistEntryRequest{
		Email:     "  User@Example.com ",
		UTMSource: "newsletter",
		City:      "Lagos",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 7, resp.ID)
	assert.Equal(t, "user@example.com", resp.Email)
	assert.Equal(t, "2026-03-01T12:00:00Z", resp.CreatedAt)
}

func TestSubmitEntry_InvalidEmailNeverReachesStorage(t *testing.T) {
	service, _ := newServiceWithMock(t)

	for _, email := range []string{"", "   ", "no-at-sign"} {
		_, err := service.SubmitEntry(context.Background(), &SubmitWaitlistEntryRequest{Email: email})
		require.Error(t, err)
		assert.Equal(t, apperrors.StatusBadRequest, apperrors.HTTPStatusCode(err))
		assert.Equal(t, MessageInvalidEmail, apperrors.GetHumanReadableMessage(err))
	}

	_, err := service.SubmitEntry(context.Background(), nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
}

func TestSubmitEntry_DuplicateIsBadRequest(t *testing.T) {
	service, repo := newServiceWithMock(t)
	repo.EXPECT().
		InsertWaitlistEntry(gomock.Any(), gomock.Any()).
		Return(nil, &StorageError{Kind: UniquenessConflict, Op: "insert", Err: gorm.ErrDuplicatedKey})

	_, err := service.SubmitEntry(context.Background(), &SubmitWaitlistEntryRequest{Email: "dup@example.com"})
	require.Error(t, err)
	assert.Equal(t, apperrors.StatusBadRequest, apperrors.HTTPStatusCode(err))
	assert.Equal(t, MessageDuplicateEmail, apperrors.GetHumanReadableMessage(err))
	assert.True(t, IsDuplicate(err))
}

func TestSubmitEntry_StorageFailureIsGeneric(t *testing.T) {
	service, repo := newServiceWithMock(t)
	cause := errors.New(`dial tcp 10.0.0.5:5432: connect: connection refused`)
	repo.EXPECT().
		InsertWaitlistEntry(gomock.Any(), gomock.Any()).
		Return(nil, &StorageError{Kind: StorageUnavailable, Op: "insert", Err: cause})

	_, err := service.SubmitEntry(context.Background(), &SubmitWaitlistEntryRequest{Email: "user@example.com"})
	require.Error(t, err)
	assert.Equal(t, apperrors.StatusInternalServerError, apperrors.HTTPStatusCode(err))
	assert.Equal(t, MessageSubmitFailed, apperrors.GetHumanReadableMessage(err))
	assert.False(t, IsDuplicate(err))
}

func TestListEntries(t *testing.T) {
	service, repo := newServiceWithMock(t)
	repo.EXPECT().ListWaitlistEntries(gomock.Any()).Return([]*models.WaitlistEntry{
		{ID: 2, Email: "b@example.com", Source: "landing_page", Status: "active"},
		{ID: 1, Email: "a@example.com", Source: "landing_page", Status: "active"},
	}, nil)

	entries, err := service.ListEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b@example.com", entries[0].Email)
}

func TestListEntries_Failure(t *testing.T) {
	service, repo := newServiceWithMock(t)
	repo.EXPECT().ListWaitlistEntries(gomock.Any()).
		Return(nil, newStorageError("list", context.DeadlineExceeded))

	_, err := service.ListEntries(context.Background())
	require.Error(t, err)
	assert.Equal(t, MessageListFailed, apperrors.GetHumanReadableMessage(err))
	assert.Equal(t, apperrors.StatusInternalServerError, apperrors.HTTPStatusCode(err))
}
