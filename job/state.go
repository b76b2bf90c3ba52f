package job

import (
	"errors"
	"fmt"
	"sync"
)

type State int

const (
	Idle State = iota
	Loading
	Mapping
	Grouping
	Reducing
	Writing
	Done
	Failed
)

var stateNames = [...]string{"Idle", "Loading", "Mapping", "Grouping", "Reducing", "Writing", "Done", "Failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) Terminal() bool {
	return s == Done || s == Failed
}

var ErrInvalidTransition = errors.New("invalid state transition")

// StateTracker walks a job through Idle -> Loading -> ... -> Done, one step at
// a time, with Failed reachable from any non-terminal state.
type StateTracker struct {
	mu      sync.RWMutex
	runID   string
	current State
	history []State
}

func NewStateTracker() *StateTracker {
	return &StateTracker{history: []State{Idle}}
}

// Reset starts a new run from Idle. Nothing carries over from the previous run.
func (t *StateTracker) Reset(runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runID = runID
	t.current = Idle
	t.history = []State{Idle}
}

func (t *StateTracker) Advance(to State) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.Terminal() || to != t.current+1 || to == Failed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.current, to)
	}
	t.current = to
	t.history = append(t.history, to)
	return nil
}

// Fail moves the job to Failed and returns the state it failed in.
func (t *StateTracker) Fail() (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	from := t.current
	if from.Terminal() {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, Failed)
	}
	t.current = Failed
	t.history = append(t.history, Failed)
	return from, nil
}

func (t *StateTracker) Current() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

func (t *StateTracker) RunID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.runID
}

func (t *StateTracker) History() []State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]State, len(t.history))
	copy(out, t.history)
	return out
}
