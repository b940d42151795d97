// Package guard decides whether a role-restricted view may render. The
// decision is a pure function of the session state and the view's allowed
// roles, re-evaluated by the caller whenever either changes.
package guard

import "eduassess/internal/domain"

// Outcome is the guard's verdict for one evaluation.
type Outcome int

const (
	// Wait means the session is still loading; render a neutral waiting
	// indicator and do not redirect.
	Wait Outcome = iota
	// Redirect means no user is authenticated; replace the current route
	// with the landing route (replace, not push, to avoid back-button loops).
	Redirect
	// Deny means the user is authenticated but holds none of the allowed
	// roles; render an access-denied view with back and logout actions.
	Deny
	// Render means the wrapped content may be shown.
	Render
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	case Deny:
		return "deny"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Decide evaluates the guard. An empty allowed set admits any authenticated
// user. Role matching is set intersection, so a user holding any one of the
// allowed roles passes.
func Decide(loading bool, user *domain.User, allowed domain.RoleSet) Outcome {
	if loading {
		return Wait
	}
	if user == nil {
		return Redirect
	}
	if len(allowed) > 0 && !user.Roles.Intersects(allowed) {
		return Deny
	}
	return Render
}
