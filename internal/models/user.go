package models

// Role is the closed set of account roles. Route guards and screen routing
// branch on this type, never on free-form strings.
type Role string

const (
	RoleKaryawan   Role = "karyawan"
	RoleHR         Role = "hr"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole maps a stored role string onto the closed set. Unknown values
// come back as ("", false) so callers fail closed.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleKaryawan, RoleHR, RoleSuperAdmin:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID              int    `json:"id"`
	NIK             string `json:"nik"`
	Name            string `json:"name"`
	PasswordHash    string `json:"-"`
	Role            Role   `json:"role"`
	CompanyID       int    `json:"company_id"`
	IsVerified      int    `json:"is_verified"`
	ProfilePhotoURL string `json:"profile_photo_url,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

type LoginRequest struct {
	NIK      string `json:"nik"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	NIK       string `json:"nik"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	CompanyID int    `json:"company_id"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user,omitempty"`
}
