// Package guard decides whether the current session may see a screen.
// It is a convenience for the UI only; the backend re-validates every
// request regardless of what the guard allowed.
package guard

import (
	"errors"

	"fundtracker.org/internal/workflow"
)

// ErrLoginRequired is returned for both unauthenticated access and an
// authenticated session with the wrong role. The two cases are
// deliberately indistinguishable so a denied screen does not leak which
// roles it accepts.
var ErrLoginRequired = errors.New("guard: login required")

// Session is the slice of the session store the guard reads. It is
// evaluated fresh on every check; verdicts are never cached across a
// login or logout.
type Session interface {
	IsAuthenticated() bool
	Role() (workflow.Role, bool)
}

// Predicate accepts or rejects a role for one screen.
type Predicate func(workflow.Role) bool

// Authenticated admits any logged-in role.
func Authenticated() Predicate {
	return func(workflow.Role) bool { return true }
}

// RoleIs admits exactly one role.
func RoleIs(want workflow.Role) Predicate {
	return func(have workflow.Role) bool { return have == want }
}

// AnyOf admits any of the given roles.
func AnyOf(roles ...workflow.Role) Predicate {
	return func(have workflow.Role) bool {
		for _, r := range roles {
			if r == have {
				return true
			}
		}
		return false
	}
}

// Check renders the verdict for one navigation. A nil error means the
// screen may render; ErrLoginRequired means redirect to the login
// surface with nothing shown.
func Check(sess Session, pred Predicate) error {
	if sess == nil || !sess.IsAuthenticated() {
		return ErrLoginRequired
	}
	role, ok := sess.Role()
	if !ok || pred == nil || !pred(role) {
		return ErrLoginRequired
	}
	return nil
}
