package checkout

import "time"

// State is a step of a checkout attempt.
type State string

const (
	StateIdle            State = "IDLE"
	StateValidating      State = "VALIDATING"
	StateAwaitingPayment State = "AWAITING_PAYMENT"
	StateSettled         State = "SETTLED"
)

var transitions = map[State][]State{
	StateIdle:            {StateValidating},
	StateValidating:      {StateIdle, StateAwaitingPayment},
	StateAwaitingPayment: {StateIdle, StateSettled},
}

// CanTransitionTo reports whether an attempt may move from one state to another.
func CanTransitionTo(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s State) IsTerminal() bool {
	return s == StateSettled
}

func (s State) String() string {
	return string(s)
}

// Transition is published to observers on every state change.
type Transition struct {
	AttemptID string
	Owner     string
	From      State
	To        State
	Reason    string
	At        time.Time
}
