package repl

import "errors"

// Errors reported by the REPL and its data editor.
var (
	ErrOutOfBounds    = errors.New("history index out of range")
	ErrEditDeclined   = errors.New("data edit declined")
	ErrInvalidData    = errors.New("data must be a YAML mapping")
	ErrUnknownCommand = errors.New("unknown command")
)
