// Package auth authenticates login attempts against the user collection and
// gates admin-only operations.
//
// Credentials are compared in plaintext, matching how they are stored.
package auth

import (
	"kukacrm/internal/types"
)

// Authenticate returns the single user whose username and password both
// match exactly. Zero or several matches yield types.ErrInvalidCredentials;
// the error never says which field was wrong.
func Authenticate(username, password string, users []types.User) (types.User, error) {
	var (
		match types.User
		n     int
	)
	for _, u := range users {
		if u.Username == username && u.Password == password {
			match = u
			n++
		}
	}
	if n != 1 {
		return types.User{}, types.ErrInvalidCredentials
	}
	return match, nil
}

// Authorize reports whether user holds role.
func Authorize(user types.User, role types.Role) bool {
	return user.Role == role
}

// Decision is the outcome of a guard.
type Decision int

const (
	Allowed Decision = iota
	Blocked
)

func (d Decision) String() string {
	if d == Blocked {
		return "blocked"
	}
	return "allowed"
}

// Err returns types.ErrGuardViolation for Blocked, nil otherwise.
func (d Decision) Err() error {
	if d == Blocked {
		return types.ErrGuardViolation
	}
	return nil
}

// GuardDeleteUser blocks deleting the bootstrap admin regardless of who asks.
func GuardDeleteUser(targetUsername string) Decision {
	if targetUsername == types.BootstrapAdminUsername {
		return Blocked
	}
	return Allowed
}
