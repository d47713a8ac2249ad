package component

import "errors"

var (
	ErrNilDefinition      = errors.New("nil component definition")
	ErrCreateFailed       = errors.New("component creation failed")
	ErrLifecyclePanic     = errors.New("component lifecycle hook panicked")
	ErrDuplicateComponent = errors.New("component already registered")
	ErrUnknownComponent   = errors.New("unknown component")
)
