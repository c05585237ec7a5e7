// Package dispatch runs subscriber callbacks with fault isolation.
//
// Both the event bus and the state store deliver to user callbacks
// synchronously in the caller's goroutine. A callback that returns an error
// or panics must never abort delivery to its siblings, so every callback is
// executed through an Executor, which recovers panics, captures the stack and
// measures the call.
//
// # Usage
//
//	exec := dispatch.NewExecutor(
//	    dispatch.WithPanicHandler(func(target string, v any, stack []byte) {
//	        logger.Error("callback panicked", "target", target, "panic", v)
//	    }),
//	)
//	res := exec.Execute(ctx, "navigation:change", func(ctx context.Context) error {
//	    return handler.Handle(ctx, env)
//	})
//	if !res.IsSuccess() {
//	    // res.Err() describes the fault
//	}
package dispatch
