package instruction

import "errors"

var (
	ErrInvalidInstruction = errors.New("invalid navigation instruction")
	ErrEmptySegment       = errors.New("empty instruction segment")
	ErrUnbalancedGroup    = errors.New("unbalanced instruction group")
)
