package vm

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Status codes
// ---------------------------------------------------------------------------

// Process status codes reported for engine failures.
const (
	StatusOK              = 0
	StatusHost            = 1  // failure outside the engine (I/O, cache, flags)
	StatusMissingEntry    = 31 // entry class or entry method missing
	StatusClassNotFound   = 32 // unresolved class or variable name
	StatusArityMismatch   = 33 // argument count differs from block arity
	StatusMalformed       = 42 // structurally invalid program
	StatusUnknownSelector = 51 // message not understood, native precondition failed
	StatusNullClass       = 52 // value without a class
	StatusRuntime         = 53 // division by zero, read-only write, other native faults
)

// Error is a fatal engine error carrying its process status code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Code)
}

// Status returns the process status code for the error.
func (e *Error) Status() int {
	return e.Code
}

// StatusOf returns the status code carried by err. Any error in the chain
// with a Status() int method decides; other errors map to StatusHost.
func StatusOf(err error) int {
	if err == nil {
		return StatusOK
	}
	var s interface{ Status() int }
	if errors.As(err, &s) {
		return s.Status()
	}
	return StatusHost
}

func semanticError(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func runtimeError(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func classNotFound(name string) *Error {
	return semanticError(StatusClassNotFound, "class %q not found", name)
}

func missingEntry(format string, args ...any) *Error {
	return semanticError(StatusMissingEntry, format, args...)
}

func arityMismatch(selector string, want, got int) *Error {
	return semanticError(StatusArityMismatch, "%s expects %d argument(s), got %d", selector, want, got)
}

func unknownSelector(receiver, selector string) *Error {
	return runtimeError(StatusUnknownSelector, "%s does not understand %s", receiver, selector)
}

func wrongArgument(selector, want string, got Value) *Error {
	return runtimeError(StatusUnknownSelector, "%s expects %s argument, got %s", selector, want, describe(got))
}

func nullClass(what string) *Error {
	return runtimeError(StatusNullClass, "%s has no class", what)
}

func runtimeFault(format string, args ...any) *Error {
	return runtimeError(StatusRuntime, format, args...)
}
