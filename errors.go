package budget

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is against the typed errors below.
var (
	ErrValidation  = errors.New("validation failed")
	ErrReferential = errors.New("referential integrity")
	ErrNotFound    = errors.New("not found")
)

// ValidationError reports a field that violates a constraint. The write that
// produced it has not been applied.
type ValidationError struct {
	Entity     string // "bank", "account", "transaction", ...
	ID         string // may be empty on create
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Constraint)
	}
	return fmt.Sprintf("invalid %s %q: %s %s", e.Entity, e.ID, e.Field, e.Constraint)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ReferentialError reports a delete refused because rows still depend on the target.
type ReferentialError struct {
	Entity     string
	ID         string
	Dependents int
	Dependent  string // kind of the dependent rows, e.g. "account"
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("cannot delete %s %q: %d dependent %s(s) must be deleted first", e.Entity, e.ID, e.Dependents, e.Dependent)
}

func (e *ReferentialError) Is(target error) bool { return target == ErrReferential }

// NotFoundError reports an unknown id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Entity, e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func invalid(entity, id, field, constraint string, args ...any) error {
	if len(args) > 0 {
		constraint = fmt.Sprintf(constraint, args...)
	}
	return &ValidationError{Entity: entity, ID: id, Field: field, Constraint: constraint}
}
