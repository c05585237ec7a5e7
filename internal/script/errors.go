package script

import "errors"

var (
	// ErrEmptySource is returned when compiling an empty chunk.
	ErrEmptySource = errors.New("empty script source")

	// ErrDuplicateParam is returned when two dependencies share a global name.
	ErrDuplicateParam = errors.New("duplicate script parameter")

	// ErrInvalidParam is returned for a parameter that is not a Lua identifier.
	ErrInvalidParam = errors.New("invalid script parameter")

	// ErrArity is returned when Eval is given the wrong number of values.
	ErrArity = errors.New("wrong number of script arguments")

	// ErrTimeout is returned when evaluation exceeds its time limit.
	ErrTimeout = errors.New("script execution timeout")
)
