package analysis

import "errors"

// ErrNotFound indicates no analysis exists for the requested ID.
var ErrNotFound = errors.New("analysis not found")
