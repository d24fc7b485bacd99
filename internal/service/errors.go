package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every concrete error below matches exactly one of these
// through errors.Is, which is what the HTTP layer switches on.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Validation kinds.
var (
	ErrRequired            = errors.New("this field is required")
	ErrEmptyTags           = errors.New("at least one tag is required")
	ErrDuplicateTag        = errors.New("tags must not repeat")
	ErrUnknownTag          = errors.New("unknown tag ids")
	ErrEmptyIngredients    = errors.New("at least one ingredient is required")
	ErrDuplicateIngredient = errors.New("ingredients must not repeat")
	ErrUnknownIngredient   = errors.New("unknown ingredient ids")
	ErrInvalidAmount       = errors.New("amount must be a positive integer")
	ErrInvalidCookingTime  = errors.New("cooking time must be a positive integer")
	ErrSelfFollow          = errors.New("cannot subscribe to yourself")
)

// Conflict kinds.
var (
	ErrAlreadyExists    = errors.New("already exists")
	ErrAlreadyFollowing = errors.New("already subscribed")
)

// ErrInvalidCredentials is returned by Login for any email/password mismatch.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)

// ValidationError names the offending field and values.
type ValidationError struct {
	Field  string
	Kind   error
	Values []string
}

func (e *ValidationError) Error() string {
	if len(e.Values) == 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Field, e.Kind, strings.Join(e.Values, ", "))
}

func (e *ValidationError) Unwrap() []error {
	return []error{e.Kind, ErrValidation}
}

func invalid(field string, kind error, values ...string) *ValidationError {
	return &ValidationError{Field: field, Kind: kind, Values: values}
}

// NotFoundError names the entity that could not be resolved.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity string, id uint) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a uniqueness violation on an edge or account.
type ConflictError struct {
	Entity string
	Kind   error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Entity, e.Kind)
}

func (e *ConflictError) Unwrap() []error {
	return []error{e.Kind, ErrConflict}
}

var (
	errPasswordTooShort = errors.New("password must be at least 8 characters")
	errInvalidEmail     = errors.New("enter a valid email address")
)
