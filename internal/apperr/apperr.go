// Package apperr defines the error kinds shared by the storage, runner and
// transcription layers. Every failure that leaves the core carries one Kind so
// the transport can map it without string matching.
package apperr

import (
	"errors"
	"strings"
)

// Kind classifies a failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidIdentifier
	KindInvalid
	KindStorage
	KindProcessSpawn
	KindToolFailure
	KindMalformedToolOutput
	KindIO
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindNotFound:            "not found",
	KindInvalidIdentifier:   "invalid identifier",
	KindInvalid:             "invalid request",
	KindStorage:             "storage error",
	KindProcessSpawn:        "process spawn error",
	KindToolFailure:         "tool failure",
	KindMalformedToolOutput: "malformed tool output",
	KindIO:                  "io error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrInvalidIdentifier   = &Error{Kind: KindInvalidIdentifier}
	ErrInvalid             = &Error{Kind: KindInvalid}
	ErrStorage             = &Error{Kind: KindStorage}
	ErrProcessSpawn        = &Error{Kind: KindProcessSpawn}
	ErrToolFailure         = &Error{Kind: KindToolFailure}
	ErrMalformedToolOutput = &Error{Kind: KindMalformedToolOutput}
	ErrIO                  = &Error{Kind: KindIO}
)

// Error is the concrete error type produced by the core.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "storage.download".
	Op string
	// Msg is a human readable message safe to return to clients.
	Msg string
	// Diagnostic carries captured tool output for ToolFailure.
	Diagnostic string
	Err        error
}

// E builds an *Error without an underlying cause.
func E(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap builds an *Error around err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Wrapf is Wrap with an explicit message.
func Wrapf(kind Kind, op, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" || t.Msg != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the first non-empty Msg in err's chain.
func Message(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Msg != "" {
			return e.Msg
		}
		err = e.Err
	}
	return ""
}

// DiagnosticOf returns the first captured diagnostic in err's chain.
func DiagnosticOf(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Diagnostic != "" {
			return e.Diagnostic
		}
		err = e.Err
	}
	return ""
}
