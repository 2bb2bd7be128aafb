// Package errs classifies every interpreter failure into the IPPcode23
// exit-code taxonomy. It mirrors the teacher VM's sentinel-error idiom
// (errSegmentationFault, errIllegalOperation, ...) but attaches an exit
// code to each sentinel and wraps construction sites with
// github.com/pkg/errors so a --verbose run can print a stack trace.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// CodedError pairs a process exit code with a human-readable
// description. The description is what reaches stderr; the code is
// what reaches the shell.
type CodedError struct {
	code int
	msg  string
	// cause is non-nil when this CodedError wraps a lower-level error
	// (a file-open failure, an xml.Unmarshal error, ...)
	cause error
}

func New(code int, msg string) *CodedError {
	return &CodedError{code: code, msg: msg}
}

// Wrap attaches cause to a copy of e, capturing a stack trace via
// pkg/errors so --verbose can print it.
func (e *CodedError) Wrap(cause error) *CodedError {
	return &CodedError{code: e.code, msg: e.msg, cause: errors.WithStack(cause)}
}

// Wrapf is Wrap with a formatted detail appended to the message.
func (e *CodedError) Wrapf(format string, args ...any) *CodedError {
	return &CodedError{code: e.code, msg: e.msg + ": " + fmt.Sprintf(format, args...), cause: errors.New(e.msg)}
}

func (e *CodedError) Code() int { return e.code }

func (e *CodedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.cause)
	}
	return e.msg
}

func (e *CodedError) Unwrap() error { return e.cause }

// StackTrace exposes the pkg/errors stack captured by Wrap, or nil if
// this error was never wrapped over a cause.
func (e *CodedError) StackTrace() errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if st, ok := e.cause.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// The exit-code taxonomy from spec.md §6. Every failure site in the
// interpreter returns one of these (optionally wrapped with more
// detail via Wrapf), never a bare error.
var (
	MissingParams    = New(10, "missing parameter or illegal combination of parameters")
	OpenInput        = New(11, "cannot open source or input file")
	OpenOutput       = New(12, "cannot open output file")
	XMLNotWellFormed = New(31, "input XML is not well-formed")
	XMLStructure     = New(32, "wrong XML structure or lexical/syntactic error in the program")
	Semantics        = New(52, "semantic error")
	OperandType      = New(53, "wrong operand type")
	UndefinedVar     = New(54, "access to undefined variable")
	FrameNotExists   = New(55, "frame does not exist")
	MissingValue     = New(56, "missing value")
	OperandValue     = New(57, "wrong operand value")
	StringOp         = New(58, "bad string operation")
	Internal         = New(99, "internal interpreter error")
)

// ExitCode extracts the process exit code carried by err, defaulting
// to 99 (internal error) for anything that isn't a *CodedError --
// mirroring the teacher's recover() fallback to errSegmentationFault
// when a panic carries no classified vm.errcode.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return Internal.code
}
