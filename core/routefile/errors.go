package routefile

import "errors"

var (
	ErrUnknownFormat   = errors.New("unknown route file format")
	ErrUnknownStrategy = errors.New("unknown navigation strategy")
	ErrInvalidPath     = errors.New("route path must be a string or a list of strings")
	ErrDecode          = errors.New("failed to decode route file")
)
