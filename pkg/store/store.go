package store

import (
	"context"
	"errors"
	"math"
	"time"

	"filesmanager/pkg/domain"
)

var (
	// ErrDuplicateEmail is returned by InsertUser when the email is already taken.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrFileNotFound is returned by UpdateFile for unknown IDs.
	ErrFileNotFound = errors.New("file not found")
)

// UserStore is the identity repository keyed by unique email.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (domain.User, bool, error)
	GetUserByID(ctx context.Context, id string) (domain.User, bool, error)
	InsertUser(ctx context.Context, email, passwordHash string) (domain.User, error)
}

// FileFilter selects records by owner and parent.
type FileFilter struct {
	UserID   string
	ParentID string
}

// Pagination is offset based: Skip records are dropped, at most Limit returned.
type Pagination struct {
	Skip  int
	Limit int
}

// PageOf converts a zero-based page number into a Pagination of domain.PageSize.
// Pages past the addressable range saturate instead of overflowing.
func PageOf(page int) Pagination {
	if page < 0 {
		page = 0
	}
	if page > math.MaxInt/domain.PageSize {
		return Pagination{Skip: math.MaxInt, Limit: domain.PageSize}
	}
	return Pagination{Skip: page * domain.PageSize, Limit: domain.PageSize}
}

// FilePatch lists the mutable fields of a record; nil means unchanged.
type FilePatch struct {
	IsPublic *bool
}

// FileStore is the file hierarchy repository.
type FileStore interface {
	GetFile(ctx context.Context, id string) (domain.File, bool, error)
	InsertFile(ctx context.Context, f domain.File) (domain.File, error)
	UpdateFile(ctx context.Context, id string, patch FilePatch) (domain.File, error)
	ListFiles(ctx context.Context, filter FileFilter, page Pagination) ([]domain.File, error)
}

// SessionStore is an ephemeral key/value cache with per-key expiration.
// Get must report expired keys as absent.
type SessionStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// Pinger is an optional capability for backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter is an optional capability exposing record totals.
type Counter interface {
	UserCount(ctx context.Context) (int, error)
	FileCount(ctx context.Context) (int, error)
}
