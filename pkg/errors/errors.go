package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the different failure kinds a collection run can hit
type ErrorType string

const (
	// ErrorTypeSessionUnavailable means no persisted session bundle exists
	ErrorTypeSessionUnavailable ErrorType = "session_unavailable"
	// ErrorTypeSessionRejected means cookies were applied but the
	// authenticated marker never appeared
	ErrorTypeSessionRejected ErrorType = "session_rejected"
	// ErrorTypeExtractionTransient means one item container was unusable
	ErrorTypeExtractionTransient ErrorType = "extraction_transient"
	// ErrorTypePageLoadTimeout means the profile page never rendered items
	ErrorTypePageLoadTimeout ErrorType = "page_load_timeout"
	// ErrorTypeAccountFailure covers any other failure inside one account's task
	ErrorTypeAccountFailure ErrorType = "account_failure"
	// ErrorTypeBrowserLaunch means the headless browser could not start
	ErrorTypeBrowserLaunch ErrorType = "browser_launch"
)

// Error is a typed failure, optionally scoped to one account
type Error struct {
	Type    ErrorType
	Account string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Type)
	if e.Account != "" {
		msg += " (" + e.Account + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same type, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Account == "" && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is checks
var (
	ErrSessionUnavailable  = &Error{Type: ErrorTypeSessionUnavailable}
	ErrSessionRejected     = &Error{Type: ErrorTypeSessionRejected}
	ErrExtractionTransient = &Error{Type: ErrorTypeExtractionTransient}
	ErrPageLoadTimeout     = &Error{Type: ErrorTypePageLoadTimeout}
	ErrAccountFailure      = &Error{Type: ErrorTypeAccountFailure}
	ErrBrowserLaunch       = &Error{Type: ErrorTypeBrowserLaunch}
)

// New creates a typed error
func New(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a typed error around err
func Wrap(errorType ErrorType, err error, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...), Err: err}
}

// ForAccount wraps err as an account failure unless it is already typed,
// in which case the account is attached to a copy.
func ForAccount(account string, err error) *Error {
	var typed *Error
	if stderrors.As(err, &typed) {
		cp := *typed
		cp.Account = account
		return &cp
	}
	return &Error{Type: ErrorTypeAccountFailure, Account: account, Err: err}
}

// TypeOf returns the type of err, or account_failure for untyped errors
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeAccountFailure
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeBrowserLaunch:
		return true
	default:
		return false
	}
}
