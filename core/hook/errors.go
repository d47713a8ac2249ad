package hook

import (
	"errors"
	"fmt"
)

var (
	ErrNilHook       = errors.New("hook function is nil")
	ErrHookExecution = errors.New("hook execution failed")
)

// HookExecutionError reports a hook that returned an error or panicked.
type HookExecutionError struct {
	Type  Type
	Index int
	Err   error
}

func (e *HookExecutionError) Error() string {
	return fmt.Sprintf("%s hook #%d: %v", e.Type, e.Index, e.Err)
}

func (e *HookExecutionError) Unwrap() []error { return []error{ErrHookExecution, e.Err} }
