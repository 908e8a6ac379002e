// errors.go defines the diagnostic error value used by every compiler stage.
// All semantic and code generation failures are fatal on first occurrence:
// the stage driver prints the diagnostic and exits.

package ir

import "fmt"

// CompileError is a positioned diagnostic. Line is the source line the error
// anchors to; zero means the position is unknown. Internal marks compiler
// invariant violations rather than errors in the user's program.
type CompileError struct {
	Line     int
	Internal bool
	Msg      string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	kind := "Error"
	if e.Internal {
		kind = "Internal Error"
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s, %s", e.Line, kind, e.Msg)
	}
	return fmt.Sprintf("%s, %s", kind, e.Msg)
}

// Diagnostic renders the error in the canonical stderr shape for the given
// source file name: "<file>:<line>: Error, <message>".
func (e *CompileError) Diagnostic(file string) string {
	kind := "Error"
	if e.Internal {
		kind = "Internal Error"
	}
	return fmt.Sprintf("%s:%d: %s, %s", file, e.Line, kind, e.Msg)
}

// ErrorAt returns a user-level diagnostic anchored to the given line.
func ErrorAt(line int, format string, args ...interface{}) *CompileError {
	return &CompileError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// InternalAt returns an internal diagnostic anchored to the given line.
func InternalAt(line int, format string, args ...interface{}) *CompileError {
	return &CompileError{Line: line, Internal: true, Msg: fmt.Sprintf(format, args...)}
}
