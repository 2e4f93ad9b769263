package account

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is what the service needs from persistence.
type Store interface {
	CreateWithProfile(ctx context.Context, acct Account, profile Profile) error
	AccountByEmail(ctx context.Context, email string) (*Account, error)
	ProfileByID(ctx context.Context, id string) (*Profile, error)
	ListProfilesByRole(ctx context.Context, role Role) ([]Profile, error)
	DeleteProfile(ctx context.Context, id string, role Role) (bool, error)
	CountByRole(ctx context.Context, role Role) (int, error)
	SaveRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error
	RefreshTokenByValue(ctx context.Context, token string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}

// Service implements the identity-provider boundary: sign-up, sign-in and
// account administration. Tokens are issued at the HTTP layer.
type Service struct {
	store  Store
	hasher hasher
}

// NewService creates a service backed by a store. bcryptCost <= 0 selects the
// bcrypt default.
func NewService(store Store, bcryptCost int) *Service {
	return &Service{store: store, hasher: newHasher(bcryptCost)}
}

// RegisterInput carries sign-up data. Shape validation (email format, password
// length) happens at the binding layer; domain rules are enforced here.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     Role
	NIM      string
}

// Register creates an account and its profile. Students must supply a NIM.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Profile, error) {
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if in.Role == RoleStudent && strings.TrimSpace(in.NIM) == "" {
		return nil, ErrNIMRequired
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	acct := Account{ID: id, Email: strings.ToLower(strings.TrimSpace(in.Email)), PasswordHash: hash}
	profile := Profile{ID: id, FullName: strings.TrimSpace(in.FullName), Role: in.Role}
	if nim := strings.TrimSpace(in.NIM); nim != "" {
		profile.NIM = &nim
	}

	if err := s.store.CreateWithProfile(ctx, acct, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Authenticate checks credentials and returns the profile. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Profile, error) {
	acct, err := s.store.AccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(acct.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	profile, err := s.store.ProfileByID(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrInvalidCredentials
	}
	return profile, nil
}

// Profile returns the profile for an account id, or nil when absent.
func (s *Service) Profile(ctx context.Context, accountID string) (*Profile, error) {
	return s.store.ProfileByID(ctx, accountID)
}

// SaveRefreshToken persists a newly issued refresh token.
func (s *Service) SaveRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	return s.store.SaveRefreshToken(ctx, accountID, token, expiresAt)
}

// ConsumeRefreshToken validates and revokes a refresh token, returning the
// account id it belongs to. Each refresh token is usable once.
func (s *Service) ConsumeRefreshToken(ctx context.Context, token string) (string, error) {
	rt, err := s.store.RefreshTokenByValue(ctx, token)
	if err != nil {
		return "", err
	}
	if rt == nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		return "", ErrInvalidRefreshToken
	}
	if err := s.store.RevokeRefreshToken(ctx, token); err != nil {
		return "", err
	}
	return rt.AccountID, nil
}

// Logout revokes the refresh token; access tokens expire on their own.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.store.RevokeRefreshToken(ctx, refreshToken)
}

// ListAdmins returns all admin profiles, newest first.
func (s *Service) ListAdmins(ctx context.Context) ([]Profile, error) {
	return s.store.ListProfilesByRole(ctx, RoleAdmin)
}

// ListStudents returns all student profiles, newest first.
func (s *Service) ListStudents(ctx context.Context) ([]Profile, error) {
	return s.store.ListProfilesByRole(ctx, RoleStudent)
}

// CountStudents counts registered students.
func (s *Service) CountStudents(ctx context.Context) (int, error) {
	return s.store.CountByRole(ctx, RoleStudent)
}

// DeleteAdmin removes another admin's profile. Self-deletion is blocked.
func (s *Service) DeleteAdmin(ctx context.Context, callerID, targetID string) error {
	if callerID == targetID {
		return ErrSelfDelete
	}
	deleted, err := s.store.DeleteProfile(ctx, targetID, RoleAdmin)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrProfileNotFound
	}
	return nil
}
