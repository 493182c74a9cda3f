package waitlist

import (
	"context"
	"time"

	"github.com/akeren/multiverse-waitlist/internal/models"
	"github.com/akeren/multiverse-waitlist/pkg/circuitbreaker"
	"github.com/akeren/multiverse-waitlist/pkg/constants"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=waitlist

// WaitlistRepository is the only path to durable storage for waitlist entries.
// Every error it returns is a *StorageError.
type WaitlistRepository interface {
	// InsertWaitlistEntry creates one row. The email must already be normalized;
	// a second insert of the same email fails with UniquenessConflict.
	InsertWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	// ListWaitlistEntries returns every row, newest first.
	ListWaitlistEntries(ctx context.Context) ([]*models.WaitlistEntry, error)
}

type waitlistRepository struct {
	db      *gorm.DB
	breaker circuitbreaker.CircuitBreaker
	tracer  trace.Tracer
}

// NewWaitlistRepository wraps db with a breaker that ignores uniqueness conflicts.
func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return NewWaitlistRepositoryWithBreaker(db, circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
		FailureThreshold: 5,
		RecoveryTimeout:  15 * time.Second,
		SuccessThreshold: 2,
		IsFailure:        countsAgainstBreaker,
	}))
}

func NewWaitlistRepositoryWithBreaker(db *gorm.DB, breaker circuitbreaker.CircuitBreaker) WaitlistRepository {
	return &waitlistRepository{
		db:      db,
		breaker: breaker,
		tracer:  otel.Tracer("waitlist-repository"),
	}
}

func (r *waitlistRepository) InsertWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	ctx, span := r.tracer.Start(ctx, "waitlist.repository.insert")
	defer span.End()

	if entry.Source == "" {
		entry.Source = constants.DefaultWaitlistSource
	}
	if entry.Status == "" {
		entry.Status = constants.DefaultWaitlistStatus
	}

	err := r.breaker.Call(func() error {
		return r.db.WithContext(ctx).Create(entry).Error
	})
	if err != nil {
		storageErr := newStorageError("insert", err)
		span.SetAttributes(attribute.String("waitlist.storage_error", storageErr.Kind.String()))
		if storageErr.Kind != UniquenessConflict {
			span.RecordError(err)
			span.SetStatus(codes.Error, storageErr.Kind.String())
		}
		return nil, storageErr
	}

	span.SetAttributes(attribute.Int64("waitlist.entry_id", int64(entry.ID)))
	return entry, nil
}

func (r *waitlistRepository) ListWaitlistEntries(ctx context.Context) ([]*models.WaitlistEntry, error) {
	ctx, span := r.tracer.Start(ctx, "waitlist.repository.list")
	defer span.End()

	var entries []*models.WaitlistEntry
	err := r.breaker.Call(func() error {
		return r.db.WithContext(ctx).
			Order("created_at DESC").
			Order("id DESC").
			Find(&entries).Error
	})
	if err != nil {
		storageErr := newStorageError("list", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, storageErr.Kind.String())
		return nil, storageErr
	}

	span.SetAttributes(attribute.Int("waitlist.entry_count", len(entries)))
	return entries, nil
}
