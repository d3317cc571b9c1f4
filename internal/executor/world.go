package executor

import (
	"errors"
	"fmt"

	"goapforge/internal/goap"
)

var (
	// ErrPreconditions is returned when an action no longer applies to the
	// current world state.
	ErrPreconditions = errors.New("preconditions not met")
	// ErrInjectedFailure is returned when the simulated world fails an action
	// on purpose.
	ErrInjectedFailure = errors.New("injected failure")
)

// World is a simulated world an executor acts on. Actions succeed by
// applying their effects unless a failure has been injected for them.
type World struct {
	state    goap.WorldState
	failures map[string]int
}

// NewWorld returns a world starting in state. failures maps an action name
// to how many times that action fails before it starts succeeding.
func NewWorld(state goap.WorldState, failures map[string]int) *World {
	f := make(map[string]int, len(failures))
	for name, n := range failures {
		if n > 0 {
			f[name] = n
		}
	}
	return &World{state: state.Clone(), failures: f}
}

// State returns a copy of the current world state.
func (w *World) State() goap.WorldState {
	return w.state.Clone()
}

// Perform carries out a. On failure the state is left unchanged.
func (w *World) Perform(a goap.Action) error {
	if !a.CanApply(w.state) {
		return fmt.Errorf("%s: %w", a.Name, ErrPreconditions)
	}
	if n := w.failures[a.Name]; n > 0 {
		w.failures[a.Name] = n - 1
		return fmt.Errorf("%s: %w", a.Name, ErrInjectedFailure)
	}
	w.state = a.Apply(w.state)
	return nil
}

// PendingFailures returns how many injected failures remain for name.
func (w *World) PendingFailures(name string) int {
	return w.failures[name]
}
