package account

import "time"

// Role is fixed at registration; there is no role-change operation.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// Account is an identity-provider credential row.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile mirrors an account into the application's own table. NIM is the
// institutional student number; admins do not carry one.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	NIM       *string   `json:"nim,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshToken is a persisted refresh token, revocable at logout.
type RefreshToken struct {
	ID        int64
	AccountID string
	Token     string
	ExpiresAt time.Time
	Revoked   bool
}
