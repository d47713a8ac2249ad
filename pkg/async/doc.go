// Package async runs error-returning functions concurrently and joins them.
//
// Exec starts fn in its own goroutine and returns an ExecFuture:
//
//	f := async.Exec(ctx, node, unload)
//	// ...
//	if err := f.Await(); err != nil {
//		return err
//	}
//
// ExecAll waits for every future, including the ones started after a failing
// sibling, and joins the errors with errors.Join:
//
//	futures := make([]*async.ExecFuture, len(children))
//	for i, c := range children {
//		futures[i] = async.Exec(ctx, c, load)
//	}
//	err := async.ExecAll(futures...)
//
// If ctx is cancelled before a function starts, the future completes with
// the context's error and fn is never called. Panics are recovered and
// reported as errors wrapping ErrPanic.
package async
