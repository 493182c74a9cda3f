package waitlist

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/akeren/multiverse-waitlist/pkg/circuitbreaker"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// StorageErrorKind is the closed set of storage outcomes callers may branch on.
type StorageErrorKind int

const (
	// StorageRejected is any storage failure that is neither a conflict nor an outage.
	StorageRejected StorageErrorKind = iota
	UniquenessConflict
	StorageUnavailable
)

func (k StorageErrorKind) String() string {
	switch k {
	case UniquenessConflict:
		return "uniqueness_conflict"
	case StorageUnavailable:
		return "storage_unavailable"
	default:
		return "storage_rejected"
	}
}

var (
	ErrUniquenessConflict = errors.New("waitlist: email already registered")
	ErrStorageUnavailable = errors.New("waitlist: storage unavailable")
	ErrStorageRejected    = errors.New("waitlist: storage rejected the operation")
)

// StorageError is the only error type the repository returns.
type StorageError struct {
	Kind StorageErrorKind
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("waitlist %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrUniquenessConflict:
		return e.Kind == UniquenessConflict
	case ErrStorageUnavailable:
		return e.Kind == StorageUnavailable
	case ErrStorageRejected:
		return e.Kind == StorageRejected
	}
	return false
}

// StorageErrorKindOf returns the kind carried by err, or StorageRejected when err is not a StorageError.
func StorageErrorKindOf(err error) StorageErrorKind {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return storageErr.Kind
	}
	return StorageRejected
}

// Postgres SQLSTATE codes.
const (
	pgUniqueViolation       = "23505"
	pgConnectionClass       = "08"
	pgOperatorIntervention  = "57P"
	pgInsufficientResources = "53"
)

func newStorageError(op string, err error) *StorageError {
	return &StorageError{Kind: classifyStorageError(err), Op: op, Err: err}
}

// classifyStorageError maps driver errors onto StorageErrorKind by error code, never by message text.
func classifyStorageError(err error) StorageErrorKind {
	if err == nil {
		return StorageRejected
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return UniquenessConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return UniquenessConflict
		case strings.HasPrefix(pgErr.Code, pgConnectionClass),
			strings.HasPrefix(pgErr.Code, pgOperatorIntervention),
			strings.HasPrefix(pgErr.Code, pgInsufficientResources):
			return StorageUnavailable
		default:
			return StorageRejected
		}
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return UniquenessConflict
		case sqliteErr.Code == sqlite3.ErrBusy,
			sqliteErr.Code == sqlite3.ErrLocked,
			sqliteErr.Code == sqlite3.ErrCantOpen,
			sqliteErr.Code == sqlite3.ErrIoErr:
			return StorageUnavailable
		default:
			return StorageRejected
		}
	}

	if errors.Is(err, circuitbreaker.ErrCircuitOpen) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		pgconn.Timeout(err) {
		return StorageUnavailable
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return StorageUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return StorageUnavailable
	}

	return StorageRejected
}

// countsAgainstBreaker trips the breaker on outages only. Conflicts, rejected data
// and caller cancellations all depend on the request, not on the store's health.
func countsAgainstBreaker(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return classifyStorageError(err) == StorageUnavailable
}
