package dns

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a resolution failure. Callers branch on the code,
// never on message text.
type ErrorCode string

const (
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeInvalidName  ErrorCode = "INVALID_NAME"
	CodeTimeout      ErrorCode = "TIMEOUT"
	CodeServerError  ErrorCode = "SERVER_ERROR"
	CodeNetworkError ErrorCode = "NETWORK_ERROR"
)

// Error is a typed resolution failure.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the resolution error code from err, if it carries one.
func CodeOf(err error) (ErrorCode, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Code, true
	}
	return "", false
}
