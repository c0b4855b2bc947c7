package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")
	// ErrConfigNotFound indicates the requested tax year has no bracket/relief
	// table. Callers must surface it, never fall back to another year's table.
	ErrConfigNotFound = errors.New("tax_config_not_found")
)
