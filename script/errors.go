package script

import (
	"errors"
	"fmt"
)

var (
	// ErrScript is the base error for every failure raised at the sandbox
	// boundary. Routine exceptions never escape as panics; they are
	// converted to errors wrapping ErrScript.
	ErrScript = errors.New("script: routine failed")

	// ErrTimeout indicates the routine did not return by its wall-clock
	// deadline. Readings collected before the deadline remain available.
	ErrTimeout = fmt.Errorf("%w: wall-clock deadline exceeded", ErrScript)

	// ErrSecurityViolation indicates the routine references a symbol outside
	// the allowed set for the active trust tier. It is raised before any
	// instrument I/O is attempted.
	ErrSecurityViolation = fmt.Errorf("%w: security violation", ErrScript)

	// ErrSyntax indicates the routine failed to parse.
	ErrSyntax = fmt.Errorf("%w: syntax error", ErrScript)
)
