package domain

type ContextKey string

const UserContextKey ContextKey = "user"

// Roles carried in the access token. The account service owns role
// promotion; this service only reads them.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// User is the authenticated principal resolved from the access token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the principal may read the moderation listings.
// Super-admins are admins too.
func (u *User) IsAdmin() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleSuperAdmin)
}

// IsSuperAdmin reports whether the principal may decide and deactivate ad requests.
func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}
