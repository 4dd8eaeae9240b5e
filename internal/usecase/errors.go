package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrMissingCredential     = errors.New("missing api credential")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
