package question

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an id does not match any question.
	ErrNotFound = errors.New("question not found")
	// ErrPersist wraps failures of the backing store on save. The in-memory
	// change that triggered the save has been rolled back when it is returned.
	ErrPersist = errors.New("persist questions")
)

// ValidationError lists the fields that failed required-field checks.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", strings.Join(e.Fields, ", "), e.Reason)
	}
	return fmt.Sprintf("required fields missing: %s", strings.Join(e.Fields, ", "))
}
