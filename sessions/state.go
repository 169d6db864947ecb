package sessions

import "fmt"

// State is a step of the identification workflow.
type State string

const (
	StateUnidentified           State = "unidentified"
	StateResolving              State = "resolving"
	StateAwaitingDisambiguation State = "awaiting_disambiguation"
	StateAwaitingVerification   State = "awaiting_verification"
	StateReady                  State = "ready"
)

// transitions lists every allowed move. Any state may fall back to Unidentified on reset.
var transitions = map[State][]State{
	StateUnidentified:           {StateResolving},
	StateResolving:              {StateUnidentified, StateAwaitingDisambiguation, StateAwaitingVerification, StateReady},
	StateAwaitingDisambiguation: {StateResolving, StateAwaitingVerification, StateReady},
	StateAwaitingVerification:   {StateResolving, StateReady},
	StateReady:                  {StateResolving, StateAwaitingDisambiguation},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to State) bool {
	if to == StateUnidentified || from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionTo moves the session to the given state or reports an illegal move.
func (s *Session) TransitionTo(to State) error {
	if !CanTransition(s.State, to) {
		return fmt.Errorf("[TransitionTo] illegal transition %s -> %s", s.State, to)
	}
	s.State = to
	return nil
}

// Settle derives the resting state from the session's flags.
func (s *Session) Settle() State {
	switch {
	case s.AwaitingInvoice():
		return StateAwaitingDisambiguation
	case !s.IdentityValidated:
		return StateUnidentified
	case !s.Usable():
		return StateAwaitingVerification
	default:
		return StateReady
	}
}
