package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnsupportedLanguage is returned when a language has no index and no
	// corpus source to build one from. It is distinct from an empty result:
	// a supported language with no matching sentences yields an empty slice
	// and a nil error.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrNoCorpusSource is returned at build time when the corpus database
	// is unreachable for a requested language.
	ErrNoCorpusSource  = errors.New("no corpus source available")
	ErrInvalidInput    = errors.New("invalid input")
	ErrSentenceTooLong = errors.New("sentence exceeds token limit")
	ErrIndexCorrupt    = errors.New("index file corrupt")
	ErrInternal        = errors.New("internal error")
	ErrTimeout         = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrUnsupportedLanguage):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrSentenceTooLong):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoCorpusSource), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
