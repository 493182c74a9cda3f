package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/akeren/multiverse-waitlist/internal/log"
	"github.com/akeren/multiverse-waitlist/pkg/constants"
	apperrors "github.com/akeren/multiverse-waitlist/pkg/errors"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Caller-facing messages.
const (
	MessageSubmitted      = "You're on the waitlist!"
	MessageInvalidEmail   = "Please provide a valid email address"
	MessageDuplicateEmail = "This email is already on our waitlist!"
	MessageSubmitFailed   = "Something went wrong. Please try again later."
	MessageListFailed     = "Failed to fetch emails"
)

var emailRules = fmt.Sprintf("required,max=%d,contains=@", constants.MaxEmailLength)

var validate = validator.New()

//go:generate mockgen -source=service.go -destination=mock_service.go -package=waitlist

type WaitlistService interface {
	// SubmitEntry validates and normalizes the email, then stores it once.
	SubmitEntry(ctx context.Context, req *SubmitWaitlistEntryRequest) (*WaitlistEntryResponse, error)
	// ListEntries returns every entry, newest first.
	ListEntries(ctx context.Context) ([]WaitlistEntryResponse, error)
}

type waitlistService struct {
	logger     *log.Logger
	repository WaitlistRepository
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository) WaitlistService {
	return &waitlistService{logger: logger, repository: repository}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	// cases.Caser keeps state, so one is built per call.
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}

var errUnprintableEmail = errors.New("email contains invalid UTF-8 or control characters")

// ValidateEmail is a shallow syntactic check on an already normalized address.
func ValidateEmail(email string) error {
	if err := validate.Var(email, emailRules); err != nil {
		return err
	}
	if !utf8.ValidString(email) ||
		strings.ContainsRune(email, utf8.RuneError) ||
		strings.ContainsFunc(email, unicode.IsControl) {
		return errUnprintableEmail
	}
	return nil
}

func (s *waitlistService) SubmitEntry(ctx context.Context, req *SubmitWaitlistEntryRequest) (*WaitlistEntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		return nil, apperrors.NewInvalidRequestError(MessageInvalidEmail, nil)
	}

	email := NormalizeEmail(req.Email)
	if err := ValidateEmail(email); err != nil {
		logger.Info("Rejected waitlist submission", "reason", "invalid_email")
		return nil, apperrors.NewInvalidRequestError(MessageInvalidEmail, err)
	}

	entry, err := s.repository.InsertWaitlistEntry(ctx, ToWaitlistEntryModel(req, email))
	if err != nil {
		switch StorageErrorKindOf(err) {
		case UniquenessConflict:
			logger.Warn("Duplicate waitlist submission")
			return nil, apperrors.NewInvalidRequestError(MessageDuplicateEmail, err)
		default:
			logger.Error("Failed to store waitlist entry", "kind", StorageErrorKindOf(err).String(), "error", err)
			return nil, apperrors.NewInternalServerError(MessageSubmitFailed, err)
		}
	}

	logger.Info("Waitlist entry created", "entry_id", entry.ID, "source", entry.Source)

	response := ToWaitlistEntryResponse(entry)
	return &response, nil
}

func (s *waitlistService) ListEntries(ctx context.Context) ([]WaitlistEntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	entries, err := s.repository.ListWaitlistEntries(ctx)
	if err != nil {
		logger.Error("Failed to list waitlist entries", "kind", StorageErrorKindOf(err).String(), "error", err)
		return nil, apperrors.NewInternalServerError(MessageListFailed, err)
	}

	return ToWaitlistEntryResponses(entries), nil
}

// IsDuplicate reports whether err came from a uniqueness conflict.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrUniquenessConflict)
}
