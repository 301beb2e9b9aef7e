package auth

import (
	"errors"
	"strings"
)

// ErrAccountDisabled is returned when the caller's profile is deactivated.
// It takes precedence over any role check.
var ErrAccountDisabled = errors.New("account is disabled")

// InsufficientRoleError is returned when the caller's role is not in the
// route's allowed set. It enumerates the allowed roles for diagnostic
// messaging but never echoes the caller's actual role.
type InsufficientRoleError struct {
	Allowed []Role
}

func (e *InsufficientRoleError) Error() string {
	names := make([]string, len(e.Allowed))
	for i, r := range e.Allowed {
		names[i] = string(r)
	}
	return "requires one of roles: " + strings.Join(names, ", ")
}

// Authorize decides whether profile may perform an operation restricted to
// the given roles. An empty allowed set means any authenticated, active
// identity. The active check always precedes the role check. On success the
// profile's role is returned for attachment to the request context.
func Authorize(profile AccessProfile, allowed ...Role) (Role, error) {
	if !profile.Active {
		return "", ErrAccountDisabled
	}
	if len(allowed) == 0 {
		return profile.Role, nil
	}
	for _, r := range allowed {
		if profile.Role == r {
			return profile.Role, nil
		}
	}
	return "", &InsufficientRoleError{Allowed: allowed}
}
