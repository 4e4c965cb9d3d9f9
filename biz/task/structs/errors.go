package structs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrTaskNotFound is reported by backends when no row matches an id.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError means a record is missing required fields or carries
// unreadable values. Nothing was written.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "invalid task: " + strings.Join(names, ", ")
}

// NotFoundError means an id is absent from the in-memory collection.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %q not found", e.ID)
}

// PersistenceError wraps a failed backend call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s task: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
