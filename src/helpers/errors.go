package helpers

import (
	"errors"
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

const (
	MsgConnectWithoutClose = "Tried to connect() without calling close()"
	MsgCloseWithoutConnect = "Tried to close() without calling connect()"
	MsgNotConnected        = "Tried to use the API without calling connect() first"
	MsgNotLoggedIn         = "Tried to use the API without calling login() first"

	apiErrorFormat = "There was an error connecting to the API. %s: %s"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type XapiError struct {
	Message string
	Cause   error
}

func (e *XapiError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *XapiError) Unwrap() error {
	return e.Cause
}

// SocketError reports connection-state misuse or a transport failure.
type SocketError struct{ XapiError }

// ApiError is raised for every response carrying status=false.
type ApiError struct {
	XapiError
	Code        string
	Description string
}

// DecodeError reports a payload that does not fit the declared record shape.
// Field holds the path inside the payload, e.g. "rateInfos[2].close".
type DecodeError struct {
	XapiError
	Record string
	Field  string
}

type ConfigurationError struct{ XapiError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewSocketError(message string, cause error) *SocketError {
	return &SocketError{XapiError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------

func NewApiError(code, description string) *ApiError {
	return &ApiError{
		XapiError:   XapiError{Message: fmt.Sprintf(apiErrorFormat, code, description)},
		Code:        code,
		Description: description,
	}
}

// -----------------------------------------------------------------------------

func NewDecodeError(record, field, reason string) *DecodeError {
	msg := fmt.Sprintf("cannot decode %s", record)
	switch {
	case strings.HasPrefix(field, "["):
		msg += field
	case field != "":
		msg += "." + field
	}
	return &DecodeError{
		XapiError: XapiError{Message: msg, Cause: errors.New(reason)},
		Record:    record,
		Field:     field,
	}
}

// -----------------------------------------------------------------------------

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{XapiError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// ErrorKind names the error family, used as a metrics label and for logging.
func ErrorKind(err error) string {
	var socketErr *SocketError
	var apiErr *ApiError
	var decodeErr *DecodeError
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &socketErr):
		return "socket"
	case errors.As(err, &apiErr):
		return "api"
	case errors.As(err, &decodeErr):
		return "decode"
	default:
		return "other"
	}
}
