package domain

import "errors"

// Error kinds. Every error returned by the service layer matches exactly one of
// them through errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrConfig     = errors.New("configuration error")
	ErrUpstream   = errors.New("upstream error")
	ErrInternal   = errors.New("internal error")
)

// Error carries a human-readable message for the caller next to its kind and
// the underlying cause, if any.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func NewConflictError(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func NewConfigError(msg string) error {
	return &Error{Kind: ErrConfig, Message: msg}
}

func NewUpstreamError(msg string, err error) error {
	return &Error{Kind: ErrUpstream, Message: msg, Err: err}
}

func NewInternalError(msg string, err error) error {
	return &Error{Kind: ErrInternal, Message: msg, Err: err}
}

// Message returns the caller-facing text of err without the wrapped cause.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
