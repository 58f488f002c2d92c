package httpclient

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a client-facing error so callers (and the internal
// retry loop in Client.DoRequest) can decide what to do with it.
type ErrorKind int

const (
	// KindCanNotConnect means the connector failed to establish a stream,
	// or ConnectTimeout expired while waiting for it.
	KindCanNotConnect ErrorKind = iota
	// KindUpgradedToWebSocket means a send was attempted on a connection
	// that already handed its streams over to a caller.
	KindUpgradedToWebSocket
	// KindDisconnected means the transport was lost while a request was
	// queued or in flight. Retirable: the client loop reconnects and
	// resubmits, and keeps doing so for as long as this kind is observed.
	KindDisconnected
	// KindDisposed means the client was dropped.
	KindDisposed
	// KindRequestTimeout means RequestTimeout expired waiting for a response.
	KindRequestTimeout
	// KindCanNotExecuteRequest means the head-of-queue request's response
	// could not be parsed.
	KindCanNotExecuteRequest
	// KindInvalidHandshake is reserved for a third-party-library wrapper
	// path and is never produced by this package.
	KindInvalidHandshake
)

func (k ErrorKind) String() string {
	switch k {
	case KindCanNotConnect:
		return "CanNotConnectToRemoteHost"
	case KindUpgradedToWebSocket:
		return "UpgradedToWebSocket"
	case KindDisconnected:
		return "Disconnected"
	case KindDisposed:
		return "Disposed"
	case KindRequestTimeout:
		return "RequestTimeout"
	case KindCanNotExecuteRequest:
		return "CanNotExecuteRequest"
	case KindInvalidHandshake:
		return "InvalidHttpHandshake"
	default:
		return "Unknown"
	}
}

// ClientError is the error type surfaced across the public API.
type ClientError struct {
	kind    ErrorKind
	msg     string
	dur     time.Duration
	wrapped error
}

func (e *ClientError) Error() string {
	if e.dur > 0 {
		return fmt.Sprintf("%s: %s (after %s)", e.kind, e.msg, e.dur)
	}
	if e.msg == "" {
		return e.kind.String()
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *ClientError) Unwrap() error { return e.wrapped }

// Kind returns the error's classification.
func (e *ClientError) Kind() ErrorKind { return e.kind }

// Retirable reports whether Client.DoRequest should reconnect and retry
// after observing this error.
func (e *ClientError) Retirable() bool { return e.kind == KindDisconnected }

func newErr(kind ErrorKind, msg string) *ClientError {
	return &ClientError{kind: kind, msg: msg}
}

func wrapErr(kind ErrorKind, msg string, wrapped error) *ClientError {
	return &ClientError{kind: kind, msg: msg, wrapped: wrapped}
}

func timeoutErr(kind ErrorKind, d time.Duration) *ClientError {
	return &ClientError{kind: kind, dur: d}
}

// ErrCanNotConnect constructs a KindCanNotConnect error.
func ErrCanNotConnect(msg string, cause error) error {
	return wrapErr(KindCanNotConnect, msg, cause)
}

// ErrDisconnected is the sentinel returned whenever the transport is lost.
var ErrDisconnected = newErr(KindDisconnected, "transport closed")

// ErrDisposed is the sentinel returned once the client has been dropped.
var ErrDisposed = newErr(KindDisposed, "client disposed")

// ErrUpgraded is the sentinel returned by sends attempted after a
// WebSocket handoff.
var ErrUpgraded = newErr(KindUpgradedToWebSocket, "")

// ErrRequestTimeout constructs a KindRequestTimeout error carrying the
// configured duration that elapsed.
func ErrRequestTimeout(d time.Duration) error {
	return timeoutErr(KindRequestTimeout, d)
}

// ErrCanNotExecuteRequest constructs a KindCanNotExecuteRequest error for
// a head-of-queue request whose response could not be parsed.
func ErrCanNotExecuteRequest(msg string) error {
	return newErr(KindCanNotExecuteRequest, msg)
}

// AsClientError extracts the *ClientError from err, if any is present in
// its chain.
func AsClientError(err error) (*ClientError, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// internal parse-level errors, never surfaced past ReadTask.

type errReadingTimeout struct{ d time.Duration }

func (e errReadingTimeout) Error() string { return fmt.Sprintf("reading timeout after %s", e.d) }

type errWritingTimeout struct{ d time.Duration }

func (e errWritingTimeout) Error() string { return fmt.Sprintf("writing timeout after %s", e.d) }

type errInvalidHTTPPayload struct{ msg string }

func (e errInvalidHTTPPayload) Error() string { return "invalid http payload: " + e.msg }

func invalidPayload(format string, args ...interface{}) error {
	return errInvalidHTTPPayload{msg: fmt.Sprintf(format, args...)}
}

// errNoRoom is ReadBuffer's signal that the payload exceeds its fixed
// capacity and the connection cannot make forward progress.
var errNoRoom = errors.New("http1: response payload exceeds read buffer capacity")
