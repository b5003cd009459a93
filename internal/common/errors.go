package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match with errors.Is; every *Error unwraps to exactly one kind.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage error")
	ErrEmbed      = errors.New("embed error")

	ErrInvalidEngagementType = errors.New("invalid engagement type")

	// ErrEmptyFeed marks a feed that loaded fine but has nothing for the
	// persona and company. It is a NotFound, but not every NotFound is it.
	ErrEmptyFeed = fmt.Errorf("empty feed: %w", ErrNotFound)
)

type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewValidationError(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// NewEmptyFeedError reports a successful feed load with no rows.
func NewEmptyFeedError(msg string) error {
	return &Error{Kind: ErrEmptyFeed, Msg: msg}
}

func NewConflictError(format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// NewStorageError wraps a persistence failure. A nil cause yields nil so
// callers can wrap unconditionally.
func NewStorageError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: ErrStorage, Msg: op, Err: cause}
}

func NewEmbedError(source string, cause error) error {
	return &Error{Kind: ErrEmbed, Msg: "embed " + source, Err: cause}
}

func NewInvalidEngagementTypeError(value string) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf("unknown engagement type %q", value), Err: ErrInvalidEngagementType}
}

// HTTPStatus maps an error kind onto a response code. Unclassified errors are
// treated as storage failures.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrEmbed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// PublicMessage is what a client may see. Storage details stay in the logs.
func PublicMessage(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
