package domain

// Role describes what a signed-in user may do in the portal.
type Role string

const (
	RoleLoanOfficer Role = "loan_officer"
	RoleAdmin       Role = "admin"
	RoleOwner       Role = "owner"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleLoanOfficer, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// User is the signed-in identity as the rest of the service sees it. Identity
// fields come from the auth provider; Role and DisplayName come from the
// profile row kept in sync at sign-in.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	Metadata    map[string]string
}

// Metadata keys the auth provider may supply for profile fields.
const (
	MetaName       = "name"
	MetaFullName   = "full_name"
	MetaLocationID = "location_id"
	MetaLOID       = "lo_id"
	MetaPhone      = "phone"
)

// Meta returns the named metadata value or "".
func (u User) Meta(key string) string {
	if u.Metadata == nil {
		return ""
	}
	return u.Metadata[key]
}

// Profile mirrors the session user into the user_profiles table, one row per uid.
type Profile struct {
	UID         string
	Email       string
	DisplayName string
	LocationID  string
	LOID        string
	Phone       string
	Role        Role
}

// LoanOfficerID resolves the loan-officer id activities are attributed to:
// the profile's lo_id when present, otherwise the user's own id.
func (p Profile) LoanOfficerID() string {
	if p.LOID != "" {
		return p.LOID
	}
	return p.UID
}
