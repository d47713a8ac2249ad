// Package viewport compares route trees and decides in which order the hooks
// of a viewport change run.
//
// Diff walks the previous and the candidate tree level by level, matching
// nodes by viewport name in the order the owning component declares its
// viewports. Each match is classified:
//
//	Unchanged  same component, same path and parameters, ancestors unchanged
//	Update     same component, different path or parameters
//	Replace    different component, or an ancestor was replaced
//	Add        viewport empty before
//	Remove     viewport empty after
//
// SwapStrategy and DeferPolicy are closed enumerations. Every combination maps
// to one Ordering in a lookup table; the transition coordinator asks the
// Ordering how to sequence removal against addition and how far a child may
// run ahead of its parent.
//
// Under ParallelRemoveFirst sibling subtrees run concurrently. The first
// sibling to fail cancels the context of the others with ErrSiblingFailed,
// so no new hook starts; hooks already running finish and their errors are
// joined.
package viewport
