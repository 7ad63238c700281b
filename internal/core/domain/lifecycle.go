package domain

// LifecycleState is the state of the client's single session.
type LifecycleState string

const (
	StateAnonymous      LifecycleState = "anonymous"
	StateRestoring      LifecycleState = "restoring"
	StateAuthenticating LifecycleState = "authenticating"
	StateAuthenticated  LifecycleState = "authenticated"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[LifecycleState][]LifecycleState{
	StateAnonymous:      {StateAuthenticating, StateRestoring},
	StateRestoring:      {StateAuthenticated, StateAnonymous},
	StateAuthenticating: {StateAuthenticated, StateAnonymous},
	StateAuthenticated:  {StateAnonymous, StateAuthenticated},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s LifecycleState) CanTransitionTo(next LifecycleState) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
