package evonic

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorKind represents the category of error that occurred
type ErrorKind int

const (
	// KindConnection indicates a network or handshake failure
	KindConnection ErrorKind = iota
	// KindTimeout indicates the bounded HTTP wait was exceeded
	KindTimeout
	// KindClosed indicates the remote side closed the WebSocket
	KindClosed
	// KindProtocol indicates a non-2xx HTTP response
	KindProtocol
	// KindUnsupportedFeature indicates a command references a capability the device lacks
	KindUnsupportedFeature
	// KindInvalidArgument indicates an argument of the wrong type or an unknown token
	KindInvalidArgument
	// KindOutOfRange indicates a correctly typed value outside the accepted interval
	KindOutOfRange
	// KindPrecondition indicates an operation invoked in the wrong connection state
	KindPrecondition
	// KindDecode indicates a malformed payload received from the device
	KindDecode
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "Connection Error"
	case KindTimeout:
		return "Connection Timeout"
	case KindClosed:
		return "Connection Closed"
	case KindProtocol:
		return "Protocol Error"
	case KindUnsupportedFeature:
		return "Unsupported Feature"
	case KindInvalidArgument:
		return "Invalid Argument"
	case KindOutOfRange:
		return "Out Of Range"
	case KindPrecondition:
		return "Precondition Error"
	case KindDecode:
		return "Decode Error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is the single error type returned by every public operation of this package.
type Error struct {
	Kind       ErrorKind // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (KindProtocol only)
	Body       any       // Decoded JSON body, or raw text, of a failed HTTP response
	Host       string    // Device host (for context)
	Err        error     // Underlying error (if any)
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrConnection         = &Error{Kind: KindConnection}
	ErrTimeout            = &Error{Kind: KindTimeout}
	ErrClosed             = &Error{Kind: KindClosed}
	ErrProtocol           = &Error{Kind: KindProtocol}
	ErrUnsupportedFeature = &Error{Kind: KindUnsupportedFeature}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrOutOfRange         = &Error{Kind: KindOutOfRange}
	ErrPrecondition       = &Error{Kind: KindPrecondition}
	ErrDecode             = &Error{Kind: KindDecode}
)

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Host != "" {
		msg = fmt.Sprintf("%s (device %s)", msg, e.Host)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// ClassifyNetworkError translates a transport failure into a connection or timeout error.
func ClassifyNetworkError(err error, host string) *Error {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Kind:    KindTimeout,
			Message: "timeout occurred while connecting to device",
			Host:    host,
			Err:     err,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Kind:    KindConnection,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Host:    host,
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &Error{Kind: KindConnection, Message: "device refused connection", Host: host, Err: err}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &Error{Kind: KindConnection, Message: "host unreachable", Host: host, Err: err}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &Error{Kind: KindConnection, Message: "network unreachable", Host: host, Err: err}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Recursively classify the underlying error
		return ClassifyNetworkError(urlErr.Err, host)
	}

	return &Error{
		Kind:    KindConnection,
		Message: "error occurred while communicating with device",
		Host:    host,
		Err:     err,
	}
}

// NewConnectionError creates a connection error wrapping the underlying cause
func NewConnectionError(host, message string, err error) *Error {
	return &Error{Kind: KindConnection, Message: message, Host: host, Err: err}
}

// NewClosedError creates an error signalling that the WebSocket has been closed
func NewClosedError(host string, err error) *Error {
	return &Error{
		Kind:    KindClosed,
		Message: "connection to the device WebSocket has been closed",
		Host:    host,
		Err:     err,
	}
}

// NewProtocolError creates an HTTP-level error carrying the response body
func NewProtocolError(statusCode int, body any) *Error {
	return &Error{
		Kind:       KindProtocol,
		Message:    fmt.Sprintf("device returned HTTP %d", statusCode),
		StatusCode: statusCode,
		Body:       body,
	}
}

// NewUnsupportedFeatureError creates an unsupported feature error
func NewUnsupportedFeatureError(message string) *Error {
	return &Error{Kind: KindUnsupportedFeature, Message: message}
}

// NewInvalidArgumentError creates an invalid argument error
func NewInvalidArgumentError(message string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message}
}

// NewOutOfRangeError creates an out of range error
func NewOutOfRangeError(message string) *Error {
	return &Error{Kind: KindOutOfRange, Message: message}
}

// NewPreconditionError creates a precondition error
func NewPreconditionError(message string) *Error {
	return &Error{Kind: KindPrecondition, Message: message}
}

// NewDecodeError creates a decode error
func NewDecodeError(message string, err error) *Error {
	return &Error{Kind: KindDecode, Message: message, Err: err}
}

func kindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func isKind(err error, kind ErrorKind) bool {
	k, ok := kindOf(err)
	return ok && k == kind
}

// IsConnectionError checks if an error is a connection error
func IsConnectionError(err error) bool { return isKind(err, KindConnection) }

// IsTimeout checks if an error is a connection timeout
func IsTimeout(err error) bool { return isKind(err, KindTimeout) }

// IsClosed checks if an error reports a closed WebSocket
func IsClosed(err error) bool { return isKind(err, KindClosed) }

// IsProtocolError checks if an error is an HTTP protocol error
func IsProtocolError(err error) bool { return isKind(err, KindProtocol) }

// IsUnsupportedFeature checks if an error is an unsupported feature error
func IsUnsupportedFeature(err error) bool { return isKind(err, KindUnsupportedFeature) }

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool { return isKind(err, KindInvalidArgument) }

// IsOutOfRange checks if an error is an out of range error
func IsOutOfRange(err error) bool { return isKind(err, KindOutOfRange) }

// IsPreconditionError checks if an error is a precondition error
func IsPreconditionError(err error) bool { return isKind(err, KindPrecondition) }

// IsDecodeError checks if an error is a decode error
func IsDecodeError(err error) bool { return isKind(err, KindDecode) }

// TroubleshootingHints returns user-facing advice for an error, or nil when there is none.
func TroubleshootingHints(err error) []string {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}

	switch e.Kind {
	case KindTimeout:
		return []string{
			"Check that the fire is powered on and joined to your WiFi",
			"Verify the host address (see the fire's app or your router)",
			"Try increasing --timeout",
		}
	case KindConnection:
		return []string{
			"Verify the host address is correct",
			"Check that you're on the same network as the fire",
			"The fire listens on port 80 (HTTP) and 81 (WebSocket)",
		}
	case KindClosed:
		return []string{
			"The fire closed the control channel; reconnect to continue",
		}
	case KindProtocol:
		if e.StatusCode >= 500 {
			return []string{
				"The fire's firmware reported an internal error",
				"Try power cycling the fire",
			}
		}
		return []string{"Check the request path and parameters"}
	case KindUnsupportedFeature:
		return []string{
			"Run 'evonic show' to list installed modules",
			"Run 'evonic effects' to list effects for this model",
		}
	case KindOutOfRange:
		return []string{
			"Brightness and speed accept 0-255",
			"Temperature accepts 11-32 (Celsius) or 50-90 (Fahrenheit)",
		}
	case KindPrecondition:
		return []string{"Connect to the fire before issuing commands"}
	}
	return nil
}
