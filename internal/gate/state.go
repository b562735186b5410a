package gate

import (
	"errors"
)

var ErrStaleResult = errors.New("stale result")

type State int

const (
	Loading State = iota
	Anonymous
	NeedsOnboarding
	Active
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Anonymous:
		return "anonymous"
	case NeedsOnboarding:
		return "needs-onboarding"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// Gate is the session/onboarding state machine of a single session.
// It is not safe for concurrent use; a Controller owns it.
type Gate struct {
	authenticated   bool
	profileComplete bool
	state           State
	seq             uint64
}

func New() *Gate {
	return &Gate{
		state: Loading,
	}
}

func (g *Gate) State() State {
	return g.state
}

func (g *Gate) Authenticated() bool {
	return g.authenticated
}

func (g *Gate) ProfileComplete() bool {
	return g.profileComplete
}

// Issue starts a new lookup. Results tagged with an older seq are stale.
func (g *Gate) Issue() uint64 {
	g.seq++
	return g.seq
}

func (g *Gate) Seq() uint64 {
	return g.seq
}

func (g *Gate) SessionChecked(seq uint64, hasUser bool) error {
	if seq < g.seq {
		return ErrStaleResult
	}

	g.authenticated = hasUser
	g.profileComplete = false
	if hasUser {
		g.state = Loading
	} else {
		g.state = Anonymous
	}
	return nil
}

// ProfileChecked is ignored while no user is signed in.
func (g *Gate) ProfileChecked(seq uint64, complete bool) error {
	if seq < g.seq {
		return ErrStaleResult
	}
	if !g.authenticated {
		return nil
	}

	g.profileComplete = complete
	if complete {
		g.state = Active
	} else {
		g.state = NeedsOnboarding
	}
	return nil
}

// SignedOut also invalidates every lookup issued so far.
func (g *Gate) SignedOut() {
	g.seq++
	g.authenticated = false
	g.profileComplete = false
	g.state = Anonymous
}
