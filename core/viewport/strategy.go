package viewport

import (
	"errors"
	"fmt"
)

var ErrUnknownPolicy = errors.New("unknown viewport policy")

// SwapStrategy orders the removal of old content against the addition of
// new content.
type SwapStrategy uint8

const (
	// SequentialRemoveFirst completes every removal hook of a subtree before
	// any addition hook of its replacement starts.
	SequentialRemoveFirst SwapStrategy = iota
	// SequentialAddFirst adds the new subtree before the old one is removed.
	SequentialAddFirst
	// ParallelRemoveFirst removes before adding within a subtree, and runs
	// independent sibling subtrees concurrently.
	ParallelRemoveFirst
)

var swapNames = [...]string{
	SequentialRemoveFirst: "sequential-remove-first",
	SequentialAddFirst:    "sequential-add-first",
	ParallelRemoveFirst:   "parallel-remove-first",
}

func (s SwapStrategy) String() string {
	if int(s) < len(swapNames) {
		return swapNames[s]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s SwapStrategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SwapStrategy) UnmarshalText(text []byte) error {
	for i, name := range swapNames {
		if name == string(text) {
			*s = SwapStrategy(i)
			return nil
		}
	}
	return fmt.Errorf("%w: swap strategy %q", ErrUnknownPolicy, text)
}

// DeferPolicy controls how far a child viewport may proceed before the
// corresponding stage of its parent completes.
type DeferPolicy uint8

const (
	// DeferLoadHooks resolves a child only after its parent has loaded.
	DeferLoadHooks DeferPolicy = iota
	// DeferGuardHooks holds child guards and loads until the parent guards
	// settle.
	DeferGuardHooks
	// DeferNone runs every hook eagerly and independently.
	DeferNone
)

var deferNames = [...]string{
	DeferLoadHooks:  "load-hooks",
	DeferGuardHooks: "guard-hooks",
	DeferNone:       "none",
}

func (d DeferPolicy) String() string {
	if int(d) < len(deferNames) {
		return deferNames[d]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (d DeferPolicy) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DeferPolicy) UnmarshalText(text []byte) error {
	for i, name := range deferNames {
		if name == string(text) {
			*d = DeferPolicy(i)
			return nil
		}
	}
	return fmt.Errorf("%w: defer policy %q", ErrUnknownPolicy, text)
}
