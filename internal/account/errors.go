package account

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrNIMRequired is returned when a student registers without a NIM.
	ErrNIMRequired = errors.New("nim required for students")
	// ErrInvalidRole is returned for a role outside admin/student.
	ErrInvalidRole = errors.New("invalid role")
	// ErrSelfDelete blocks an admin from deleting their own account.
	ErrSelfDelete = errors.New("cannot delete own account")
	// ErrProfileNotFound is returned when a targeted profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidRefreshToken covers unknown, revoked and expired refresh tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrUnauthenticated means the caller has no account or profile.
	ErrUnauthenticated = errors.New("not authenticated")
)

// WrongRoleError reports a role mismatch along with the caller's actual role
// so the caller can be redirected to their own dashboard instead of erroring.
type WrongRoleError struct {
	Required Role
	Actual   Role
}

func (e *WrongRoleError) Error() string {
	return fmt.Sprintf("requires role %s, caller is %s", e.Required, e.Actual)
}
