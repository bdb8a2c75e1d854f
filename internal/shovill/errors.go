package shovill

import "fmt"

// ValidationError is bad user input caught before any stage runs.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func newValidationError(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ParseError is a collaborating tool's output not matching its expected
// grammar. The offending text is kept for diagnosis: the formats are
// versioned contracts and a mismatch usually means the tool changed.
type ParseError struct {
	tool string
	text string
	msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s output: %s: %q", e.tool, e.msg, e.text)
}

// StageError is a collaborating tool exiting non-zero. It records the named
// pipeline stage that failed; the run is aborted with no retries.
type StageError struct {
	stage string
	tool  string
	err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed running %s: %v", e.stage, e.tool, e.err)
}
