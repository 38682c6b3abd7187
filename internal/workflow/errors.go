package workflow

import "errors"

// Sentinel errors every Store implementation maps its backend's
// failures onto, so callers can branch without knowing the backend.
var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)
