package dispatch

import "errors"

// ErrPanic is matched by errors.Is for every recovered callback panic.
var ErrPanic = errors.New("callback panicked")
