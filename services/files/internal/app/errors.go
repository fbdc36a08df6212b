package app

import "errors"

var (
	// ErrUnauthorized covers missing, invalid or expired sessions and bad credentials.
	// It never says which of those happened.
	ErrUnauthorized = errors.New("Unauthorized")

	// ErrNotFound is returned both for absent records and for records the caller may not see.
	ErrNotFound = errors.New("Not found")

	// ErrFolderHasNoContent is a bad request: folders carry no content.
	ErrFolderHasNoContent = errors.New("A folder doesn't have content")

	ErrParentNotFound   = errors.New("Parent not found")
	ErrParentNotAFolder = errors.New("Parent is not a folder")

	ErrEmailAlreadyExists = errors.New("Already exist")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func missing(field, label string) *ValidationError {
	return &ValidationError{Field: field, Message: "Missing " + label}
}

// Kind is the discriminant of an operation failure.
type Kind int

const (
	KindNone Kind = iota
	KindUnauthorized
	KindNotFound
	KindBadRequest
	KindParentNotFound
	KindParentNotAFolder
	KindValidation
	KindInternal
)

// KindOf classifies err; unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrFolderHasNoContent):
		return KindBadRequest
	case errors.Is(err, ErrParentNotFound):
		return KindParentNotFound
	case errors.Is(err, ErrParentNotAFolder):
		return KindParentNotAFolder
	case errors.Is(err, ErrValidation), errors.Is(err, ErrEmailAlreadyExists):
		return KindValidation
	default:
		return KindInternal
	}
}
