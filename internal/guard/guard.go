// Package guard evaluates the route access policy. The decision is a
// pure function of the resolved auth state, so every branch is testable
// without a server.
package guard

import "server/internal/auth"

// Decision is the guard's verdict for one request.
type Decision int

const (
	// ShowLoading: auth state is not settled yet; the client should wait
	// and retry.
	ShowLoading Decision = iota
	// RedirectToLogin: no signed-in user.
	RedirectToLogin
	// ShowPendingApproval: signed in but not yet approved by an admin.
	ShowPendingApproval
	// ShowForbidden: signed in but lacking the admin role.
	ShowForbidden
	// RenderChildren: access granted.
	RenderChildren
)

func (d Decision) String() string {
	switch d {
	case ShowLoading:
		return "show-loading"
	case RedirectToLogin:
		return "redirect-to-login"
	case ShowPendingApproval:
		return "show-pending-approval"
	case ShowForbidden:
		return "show-forbidden"
	case RenderChildren:
		return "render-children"
	}
	return "unknown"
}

// Requirement selects which policy a route demands.
type Requirement int

const (
	// RequireApproved admits approved users and every admin.
	RequireApproved Requirement = iota
	// RequireAdmin admits admins only.
	RequireAdmin
)

// Decide evaluates the access policy in its contractual order: loading
// first, then the user check, then the admin requirement, then the
// profile-pending wait, then the admin bypass, then the approval gate.
// The admin bypass must run before the approval check so an unapproved
// admin is never shown the pending screen, and the profile-pending wait
// must precede both so a freshly signed-in user never sees a wrong
// interstitial while the profile is still in flight.
func Decide(st auth.State, req Requirement) Decision {
	if st.Loading {
		return ShowLoading
	}
	if st.User == nil {
		return RedirectToLogin
	}
	if req == RequireAdmin && !st.IsAdmin() {
		return ShowForbidden
	}
	if req == RequireApproved && st.Profile == nil {
		return ShowLoading
	}
	if st.IsAdmin() {
		return RenderChildren
	}
	if !st.IsApproved() {
		return ShowPendingApproval
	}
	return RenderChildren
}
