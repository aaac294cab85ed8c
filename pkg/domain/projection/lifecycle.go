package projection

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

type lifecycleContext struct {
	ExecutionID string
}

// Lifecycle models the legal progression of an execution's overall status.
// The engine itself never consults it: every projection is a full replacement
// value. Stores use the lifecycle to tell an expected overwrite apart from a
// regression (e.g. a completed execution suddenly reporting running again
// without passing through a restart).
type Lifecycle struct {
	interpreter *statekit.Interpreter[lifecycleContext]
}

func stateID(s Status) statekit.StateID     { return statekit.StateID(s) }
func eventType(s Status) statekit.EventType { return statekit.EventType(s) }

// NewLifecycle builds a lifecycle machine positioned at the given status.
func NewLifecycle(executionID string, initial Status) (*Lifecycle, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("invalid initial status: %s", initial)
	}

	builder := statekit.NewMachine[lifecycleContext]("execution-lifecycle").
		WithInitial(stateID(initial)).
		WithContext(lifecycleContext{ExecutionID: executionID})

	builder.State(stateID(StatusIdle)).
		On(eventType(StatusInitializing)).Target(stateID(StatusInitializing)).
		On(eventType(StatusRunning)).Target(stateID(StatusRunning)).
		On(eventType(StatusError)).Target(stateID(StatusError)).
		Done()

	builder.State(stateID(StatusInitializing)).
		On(eventType(StatusRunning)).Target(stateID(StatusRunning)).
		On(eventType(StatusStopping)).Target(stateID(StatusStopping)).
		On(eventType(StatusError)).Target(stateID(StatusError)).
		Done()

	builder.State(stateID(StatusRunning)).
		On(eventType(StatusPaused)).Target(stateID(StatusPaused)).
		On(eventType(StatusStopping)).Target(stateID(StatusStopping)).
		On(eventType(StatusCompleted)).Target(stateID(StatusCompleted)).
		On(eventType(StatusError)).Target(stateID(StatusError)).
		Done()

	builder.State(stateID(StatusPaused)).
		On(eventType(StatusRunning)).Target(stateID(StatusRunning)).
		On(eventType(StatusStopping)).Target(stateID(StatusStopping)).
		On(eventType(StatusError)).Target(stateID(StatusError)).
		Done()

	builder.State(stateID(StatusStopping)).
		On(eventType(StatusStopped)).Target(stateID(StatusStopped)).
		On(eventType(StatusError)).Target(stateID(StatusError)).
		Done()

	// Terminal statuses allow a restart: a fresh run reuses the execution slot.
	for _, terminal := range []Status{StatusStopped, StatusCompleted, StatusError} {
		builder.State(stateID(terminal)).
			On(eventType(StatusIdle)).Target(stateID(StatusIdle)).
			On(eventType(StatusInitializing)).Target(stateID(StatusInitializing)).
			On(eventType(StatusRunning)).Target(stateID(StatusRunning)).
			Done()
	}

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build lifecycle machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Lifecycle{interpreter: interpreter}, nil
}

// Transition attempts to move the lifecycle to the target status. Moving to
// the current status is a no-op. An error means the machine has no transition
// for the move; callers decide whether to reject it or record a regression.
func (l *Lifecycle) Transition(to Status) error {
	before := l.Current()
	if before == to {
		return nil
	}

	l.interpreter.Send(statekit.Event{Type: eventType(to)})
	after := l.Current()

	if before != after {
		return nil
	}
	return fmt.Errorf("status cannot move from %s to %s", before, to)
}

// Current returns the lifecycle's current status.
func (l *Lifecycle) Current() Status {
	return Status(l.interpreter.State().Value)
}
