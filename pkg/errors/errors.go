// Package errors holds the sentinel errors shared across features.
// Repositories return these; handlers translate them to HTTP codes.
package errors

import "errors"

var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
	ErrNotPending = errors.New("content is not pending review")
)
