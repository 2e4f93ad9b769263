package account

import "context"

// ProfileSource is the read-only lookup the gate needs.
type ProfileSource interface {
	ProfileByID(ctx context.Context, id string) (*Profile, error)
}

// Gate resolves a caller's profile and checks it against a required role.
// It re-reads the profile on every call; role decisions are never cached.
type Gate struct {
	profiles ProfileSource
}

// NewGate creates a gate over a profile source.
func NewGate(profiles ProfileSource) *Gate {
	return &Gate{profiles: profiles}
}

// Resolve returns the caller's profile when it carries the required role.
// A missing account or profile yields ErrUnauthenticated; a mismatched role
// yields *WrongRoleError carrying the caller's actual role.
func (g *Gate) Resolve(ctx context.Context, accountID string, required Role) (*Profile, error) {
	if accountID == "" {
		return nil, ErrUnauthenticated
	}
	profile, err := g.profiles.ProfileByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrUnauthenticated
	}
	if profile.Role != required {
		return nil, &WrongRoleError{Required: required, Actual: profile.Role}
	}
	return profile, nil
}
