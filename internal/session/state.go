package session

// State is the session snapshot exposed to callers. Transitions never mutate
// a State in place; each returns a fresh value so callers can hold copies
// without surprises.
type State struct {
	User          *User
	Authenticated bool
	Loading       bool
	Err           string
}

// start begins a remote call: previous error cleared, loading set.
func (s State) start() State {
	s.Loading = true
	s.Err = ""
	return s
}

// success lands an authenticated session with the given user.
func (s State) success(user User) State {
	u := user
	s.User = &u
	s.Authenticated = true
	s.Loading = false
	s.Err = ""
	return s
}

// failure drops to unauthenticated carrying the error message.
func (s State) failure(message string) State {
	s.User = nil
	s.Authenticated = false
	s.Loading = false
	s.Err = message
	return s
}

// settle ends a non-authenticating call (register, reset request, password
// change) without touching the user or authenticated flags.
func (s State) settle() State {
	s.Loading = false
	s.Err = ""
	return s
}

// logout clears everything.
func (s State) logout() State {
	return State{}
}

// clearError is idempotent; a state without an error comes back identical.
func (s State) clearError() State {
	s.Err = ""
	return s
}

// profileUpdated replaces the user snapshot while staying authenticated.
// No-op when no user is present.
func (s State) profileUpdated(user User) State {
	if s.User == nil {
		s.Loading = false
		return s
	}
	u := user
	s.User = &u
	s.Loading = false
	s.Err = ""
	return s
}
