package history

import "errors"

var (
	ErrNoEntry       = errors.New("no history entry at target position")
	ErrNilBackend    = errors.New("history backend is nil")
	ErrOutsideOfBase = errors.New("url is outside of the base path")
)
