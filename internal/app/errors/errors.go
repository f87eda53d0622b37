package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure so the HTTP layer can pick a status and message
// without inspecting error text.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindDependencyMissing Kind = "dependency_missing"
	KindAuth              Kind = "auth"
	KindTranscode         Kind = "transcode"
	KindSizeLimit         Kind = "size_limit"
	KindFileNotFound      Kind = "file_not_found"
	KindProvider          Kind = "provider"
	KindEmptyResult       Kind = "empty_result"
	KindTimeout           Kind = "timeout"
	KindUnknown           Kind = "unknown"
	KindInternal          Kind = "internal"
)

// Common errors
var (
	ErrMissingAPIKey    = New(KindValidation, "BAIDU_API_KEY is required")
	ErrMissingSecretKey = New(KindValidation, "BAIDU_SECRET_KEY is required")
	ErrFFmpegNotFound   = New(KindDependencyMissing, "ffmpeg not found, install it and add it to PATH or set FFMPEG_BINARY")
	ErrNoAccessToken    = New(KindAuth, "failed to obtain access token")
	ErrFileNotFound     = New(KindFileNotFound, "audio file does not exist")
	ErrFileTooLarge     = New(KindSizeLimit, "file size exceeds 10MB limit")
	ErrEmptyResult      = New(KindEmptyResult, "no speech content recognized")
	ErrRequestTimeout   = New(KindTimeout, "request timed out, please try again")
)

// Error represents a kinded error with optional cause
type Error struct {
	kind    Kind
	op      string
	message string
	cause   error
}

// New creates a new error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Newf creates a new formatted error of the given kind
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with kind and context. A nil err yields nil.
func Wrap(err error, kind Kind, op, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    kind,
		op:      op,
		message: message,
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.message
	if e.op != "" {
		msg = e.op + ": " + msg
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Message returns the message without op or cause, safe to show to clients.
func (e *Error) Message() string {
	return e.message
}

// Kind returns the error kind
func (e *Error) Kind() Kind {
	return e.kind
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors of the same kind and message
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind && e.message == t.message
}

// KindOf returns the kind of the first *Error in the chain, or KindUnknown.
func KindOf(err error) Kind {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
