package requeststate

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrBusy              = errors.New("request already in progress")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Observer is notified of every state a Machine enters.
type Observer func(State)

// Machine tracks the state of one request slot and notifies observers on every
// transition. It is safe for concurrent use; a Run while another is loading fails with
// ErrBusy.
type Machine struct {
	mu        sync.Mutex
	state     State
	observers []Observer
}

func NewMachine(observers ...Observer) *Machine {
	return &Machine{state: Initial(), observers: observers}
}

// Subscribe adds an observer.
func (m *Machine) Subscribe(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Run moves the machine through idle and loading, performs fn once and settles on the
// terminal state of its result.
func (m *Machine) Run(ctx context.Context, fn RequestFunc) (State, error) {
	m.mu.Lock()
	if m.state.Status == StatusLoading {
		m.mu.Unlock()
		return State{}, ErrBusy
	}
	var entered []State
	if m.state.Status != StatusIdle {
		entered = append(entered, m.enterLocked(Initial()))
	}
	entered = append(entered, m.enterLocked(State{Status: StatusLoading}))
	m.mu.Unlock()
	m.notify(entered...)

	final := Resolve(fn(ctx))

	m.mu.Lock()
	if !m.state.Status.CanTransition(final.Status) {
		status := m.state.Status
		m.mu.Unlock()
		return State{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, status, final.Status)
	}
	m.enterLocked(final)
	m.mu.Unlock()
	m.notify(final)
	return final, nil
}

// Reset returns a settled machine to idle.
func (m *Machine) Reset() error {
	m.mu.Lock()
	if !m.state.Status.CanTransition(StatusIdle) {
		status := m.state.Status
		m.mu.Unlock()
		if status == StatusIdle {
			return nil
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, status, StatusIdle)
	}
	m.enterLocked(Initial())
	m.mu.Unlock()
	m.notify(Initial())
	return nil
}

func (m *Machine) enterLocked(s State) State {
	m.state = s
	return s
}

func (m *Machine) notify(states ...State) {
	m.mu.Lock()
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()
	for _, s := range states {
		for _, o := range observers {
			o(s)
		}
	}
}
