package findings

import "errors"

// ErrInvalidInput is returned when an entity fails validation.
var ErrInvalidInput = errors.New("findings: invalid input")

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("findings: not found")
