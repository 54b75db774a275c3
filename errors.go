package ftp

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// FtpError is satisfied by every error this package returns. Error returns
// a human-readable message; Recoverable reports whether the reference
// implementation would consider retrying with a fresh connection.
type FtpError interface {
	error
	Recoverable() bool
}

var (
	_ FtpError = (*ConnectionError)(nil)
	_ FtpError = (*SecureError)(nil)
	_ FtpError = (*UnexpectedResponseError)(nil)
	_ FtpError = (*BadCommandError)(nil)
	_ FtpError = (*BadParameterError)(nil)
	_ FtpError = (*BadResponseError)(nil)
	_ FtpError = (*InvalidAddressError)(nil)
)

// ConnectionError wraps any I/O failure on the control or data channel.
// Recoverable reports true for the subset of causes the reference
// implementation treats as retryable with a fresh engine: connection
// refused, reset, aborted, or not-connected.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("ftp: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ftp: connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Recoverable() bool { return isRecoverableNetErr(e.Err) }

// SecureError wraps a TLS handshake or stream-level security failure.
// Always marked recoverable: the connection can be retried.
type SecureError struct {
	Op  string
	Err error
}

func (e *SecureError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("ftp: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ftp: secure error: %v", e.Err)
}

func (e *SecureError) Unwrap() error     { return e.Err }
func (e *SecureError) Recoverable() bool { return true }

// UnexpectedResponseError is raised when a reply's status matched neither
// the caller's expected set nor the BadCommand/BadParameter buckets. It
// carries the full Response for operation-specific handling.
type UnexpectedResponseError struct {
	Response Response
}

func (e *UnexpectedResponseError) Error() string {
	return "ftp: unexpected response: " + e.Response.String()
}

func (e *UnexpectedResponseError) Recoverable() bool { return false }

// BadCommandError is raised for status codes 500, 502, or 503.
type BadCommandError struct {
	Status  Status
	Message string
}

func (e *BadCommandError) Error() string {
	return fmt.Sprintf("ftp: bad command (%d): %s", e.Status, e.Message)
}

func (e *BadCommandError) Recoverable() bool { return false }

// BadParameterError is raised for status codes 501 or 504.
type BadParameterError struct {
	Status  Status
	Message string
}

func (e *BadParameterError) Error() string {
	return fmt.Sprintf("ftp: bad parameter (%d): %s", e.Status, e.Message)
}

func (e *BadParameterError) Recoverable() bool { return false }

// BadResponseError indicates the reply violated framing: a line too short,
// a missing status delimiter, a non-matching continuation code, a non-digit
// code, or an unexpected EOF mid-reply. It signals a broken server or a
// desynchronized session, never a normal protocol outcome.
type BadResponseError struct {
	Reason string
}

func (e *BadResponseError) Error() string     { return "ftp: bad response: " + e.Reason }
func (e *BadResponseError) Recoverable() bool { return false }

// InvalidAddressError is raised when a string that should parse as a
// socket address (a PASV/EPSV reply, or a caller-supplied host:port) fails
// to parse.
type InvalidAddressError struct {
	Input string
	Err   error
}

func (e *InvalidAddressError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ftp: invalid address %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("ftp: invalid address %q", e.Input)
}

func (e *InvalidAddressError) Unwrap() error     { return e.Err }
func (e *InvalidAddressError) Recoverable() bool { return false }

// Recoverable reports whether err represents a condition the reference
// implementation considers retryable with a fresh engine. Errors that don't
// implement the recoverable predicate are treated as not recoverable.
func Recoverable(err error) bool {
	var r FtpError
	if errors.As(err, &r) {
		return r.Recoverable()
	}
	return false
}

// classifyStatus turns a framed-but-unexpected reply into the right error
// kind per the reply reader's classification rule: 500/502/503 is a bad
// command, 501/504 is a bad parameter, anything else is unexpected.
func classifyStatus(resp Response) error {
	switch resp.Status {
	case BadCommand, NotImplemented, BadSequence:
		return &BadCommandError{Status: resp.Status, Message: resp.Body.String()}
	case BadArguments, NotImplementedParameter:
		return &BadParameterError{Status: resp.Status, Message: resp.Body.String()}
	default:
		return &UnexpectedResponseError{Response: resp}
	}
}

// isRecoverableNetErr inspects the error chain for the specific OS-level
// conditions the reference implementation treats as recoverable: connection
// refused, reset, aborted, or not-connected.
func isRecoverableNetErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) {
		return false
	}
	msg := err.Error()
	for _, sub := range []string{
		"connection refused",
		"connection reset",
		"connection aborted",
		"not connected",
	} {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return isRecoverableNetErr(opErr.Err)
	}
	return false
}
