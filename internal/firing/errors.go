package firing

import (
	"fmt"
	"strings"
)

// ValidationError rejects malformed input before any write. Fields
// lists what was missing or out of range.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// PreconditionError rejects a transition the lifecycle rules forbid.
// Condition names the unmet condition; the transition never silently
// no-ops.
type PreconditionError struct {
	Condition string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Condition
}

// ForbiddenError rejects an actor who is authenticated but not allowed
// to perform the transition on this piece.
type ForbiddenError struct {
	Action string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}
