package models

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition marks a status change the owning state machine does not allow.
var ErrIllegalTransition = errors.New("illegal status transition")

// TransitionError describes a rejected status change.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot move from %q to %q", e.Entity, e.From, e.To)
}

// Is lets callers match with errors.Is(err, ErrIllegalTransition).
func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

func allowed[S ~string](table map[S][]S, from, to S) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}
