package domain

// Session is the authentication state of one browser session.
//
// Identity stays nil until resolution finishes. Resolving is true only during
// the first resolution of the session; sign-in and sign-out change Identity
// without passing through Resolving again.
type Session struct {
	Identity  *User `json:"identity"`
	Resolving bool  `json:"resolving"`
}

// Authenticated reports whether the session has finished resolving to a user.
func (s Session) Authenticated() bool {
	return !s.Resolving && s.Identity != nil
}

// Clone returns a copy that does not share the identity pointer.
func (s Session) Clone() Session {
	if s.Identity == nil {
		return s
	}
	u := *s.Identity
	return Session{Identity: &u, Resolving: s.Resolving}
}

// ReturnState is attached to a sign-in redirect so the sign-in screen can
// send the user back to the location the guard intercepted.
type ReturnState struct {
	From string `json:"from,omitempty"`
}

// Empty reports whether the state carries no location.
func (r ReturnState) Empty() bool {
	return r.From == ""
}
