package domain

type Role string

const (
	RoleSeeker   Role = "SEEKER"
	RoleCatalyst Role = "CATALYST"
	RoleAdmin    Role = "ADMIN"
)

// UserRecord is the client's canonical view of the signed-in user. It is
// assembled from up to two backend shapes: the login response (which carries
// the staff flags) and the profile response (which carries the role and
// profile fields but no staff flags).
type UserRecord struct {
	ID          int32  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	Role        Role   `json:"role"`
}

// UserRef identifies a counterpart user embedded in a booking.
type UserRef struct {
	ID       int32  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DeriveRole applies the admin override: staff and superuser accounts are
// ADMIN no matter what role the server reported. Every site that constructs
// or merges a UserRecord must pass it through here.
func DeriveRole(u UserRecord) UserRecord {
	if u.IsStaff || u.IsSuperuser {
		u.Role = RoleAdmin
	}
	return u
}

// MergeUserRecords combines a login-shaped record with a profile-shaped one.
// Profile fields win, except the staff flags which only the login response
// carries. The admin override is re-applied on the merged result.
func MergeUserRecords(login, profile UserRecord) UserRecord {
	merged := profile
	if merged.ID == 0 {
		merged.ID = login.ID
	}
	if merged.Username == "" {
		merged.Username = login.Username
	}
	if merged.Email == "" {
		merged.Email = login.Email
	}
	if merged.Role == "" {
		merged.Role = login.Role
	}
	merged.IsStaff = login.IsStaff
	merged.IsSuperuser = login.IsSuperuser
	return DeriveRole(merged)
}

// HomeRoute maps a role to its canonical dashboard path. Unknown roles land
// on the site root.
func HomeRoute(role Role) string {
	switch role {
	case RoleAdmin:
		return "/admin"
	case RoleSeeker:
		return "/seeker"
	case RoleCatalyst:
		return "/catalyst"
	default:
		return "/"
	}
}
