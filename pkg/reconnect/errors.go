package reconnect

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("reconnect: invalid transition")
	ErrUnknownState      = errors.New("reconnect: unknown state")
)

// TransitionError indicates no transition exists for the given state/event combination.
type TransitionError struct {
	From  State
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no transition available from state '%s' for event '%s'", e.From, e.Event)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func IsTransitionError(err error) bool {
	var e *TransitionError
	return errors.As(err, &e)
}
