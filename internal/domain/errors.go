package domain

import (
	"errors"
	"strings"
)

// Error kinds shared by repositories, services and handlers.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many attempts")
	ErrNotification       = errors.New("notification failed")
)

// Entity errors
var (
	ErrAdminNotFound       = newKindError(ErrNotFound, "admin not found")
	ErrAdminExists         = newKindError(ErrConflict, "an admin with this email already exists")
	ErrCategoryNotFound    = newKindError(ErrNotFound, "category not found")
	ErrProductNotFound     = newKindError(ErrNotFound, "product not found")
	ErrContactNotFound     = newKindError(ErrNotFound, "contact request not found")
	ErrCategoryExists      = newKindError(ErrConflict, "a category with this name or slug already exists")
	ErrCategoryHasProducts = newKindError(ErrConflict, "category has dependent products")
	ErrProductSlugExists   = newKindError(ErrConflict, "a product with this slug already exists")
)

// KindError is a specific error that still matches its kind with errors.Is.
type KindError struct {
	Kind error
	Msg  string
}

func newKindError(kind error, msg string) *KindError {
	return &KindError{Kind: kind, Msg: msg}
}

func (e *KindError) Error() string { return e.Msg }
func (e *KindError) Unwrap() error { return e.Kind }

// FieldError describes why one input field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level detail and matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
