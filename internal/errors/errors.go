// Package errors provides domain-specific error types for ircecho.
//
// Connection-level failures (NetworkError) end a session. Line-level
// failures (DecodeError, MalformedLineError) are recovered by skipping
// the offending line.
package errors

import (
	"errors"
	"fmt"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrConnectionClosed = errors.New("connection closed by peer")
	ErrNotConnected     = errors.New("not connected")
	ErrInvalidLine      = errors.New("line contains CR, LF or NUL")
	ErrNonASCII         = errors.New("non-ASCII byte")
)

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure of the underlying stream.  With
// Op "dial" it is a connection error; with "read" or "write" it is a
// mid-session I/O error.
type NetworkError struct {
	Op   string // "dial", "read", "write"
	Addr string // remote address
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError reports an inbound line that is not plain ASCII.
type DecodeError struct {
	Line   string
	Offset int  // index of the first offending byte
	Byte   byte // the offending byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: byte 0x%02x at offset %d: %v", e.Byte, e.Offset, ErrNonASCII)
}

func (e *DecodeError) Unwrap() error { return ErrNonASCII }

// MalformedLineError reports a recognised command that lacks the
// fields needed to act on it.
type MalformedLineError struct {
	Command string
	Line    string
	Reason  string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed %s: %s: %q", e.Command, e.Reason, e.Line)
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, Err: err}
}

// Malformed creates a MalformedLineError.
func Malformed(command, line, reason string) *MalformedLineError {
	return &MalformedLineError{Command: command, Line: line, Reason: reason}
}

// ── Classification helpers ───────────────────────────────────────────

// IsFatal reports whether err ends the session.  Line-level errors are
// not fatal; everything else is.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var de *DecodeError
	var me *MalformedLineError
	return !errors.As(err, &de) && !errors.As(err, &me)
}

// IsClosed reports whether err means the peer closed the stream.
func IsClosed(err error) bool {
	return errors.Is(err, ErrConnectionClosed)
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
