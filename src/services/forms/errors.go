package forms

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrFormNotFound           = errors.New("form not found")
	ErrEntryNotFound          = errors.New("entry not found")
	ErrWorkflowStepOutOfRange = errors.New("workflow step out of range")
)

// ValidationError carries one message per offending field. Recovered into a
// 400 response, never fatal.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

// DuplicateKeyError surfaces a unique-constraint violation as a conflict on
// the offending field.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for field %q", e.Field)
}
