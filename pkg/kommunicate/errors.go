package kommunicate

import (
	"errors"
	"fmt"
)

// TransportError reports that a request could not be sent or that no
// response arrived (DNS, connect, timeout, cancellation).
type TransportError struct {
	Method string
	Path   string
	Cause  error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("kommunicate: %s %s: transport failure: %v", e.Method, e.Path, e.Cause)
}

// Unwrap returns the underlying cause
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// RemoteAPIError reports a non-2xx response from the remote service.
type RemoteAPIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("kommunicate: %s %s: unexpected status code: %d, body: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// DecodeError reports a 2xx response whose body is not the expected JSON.
type DecodeError struct {
	Method string
	Path   string
	Body   string
	Cause  error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("kommunicate: %s %s: invalid json response: %v", e.Method, e.Path, e.Cause)
}

// Unwrap returns the underlying cause
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// AsRemoteAPIError extracts a RemoteAPIError from err's chain.
func AsRemoteAPIError(err error) (*RemoteAPIError, bool) {
	var remoteErr *RemoteAPIError
	if errors.As(err, &remoteErr) {
		return remoteErr, true
	}
	return nil, false
}

// IsTransportError reports whether err's chain contains a TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// IsDecodeError reports whether err's chain contains a DecodeError.
func IsDecodeError(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}
