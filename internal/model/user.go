package model

import "time"

// Role values stored in users.role.  The set is closed: every user row
// carries exactly one of these, and anything else is rejected at the
// validation layer before it reaches the database.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ValidRole reports whether s is one of the three known role names.
func ValidRole(s string) bool {
	return s == RoleUser || s == RoleModerator || s == RoleAdmin
}

// User represents an application user record as stored in the `users`
// table.  Authentication is passwordless: identity is proven with a signed
// confirmation code exchanged for a bearer token, so there is no password
// column.  The json tags are omitted because these structs are used by the
// repository layer; handlers define separate response types.
//
// Fields:
//
//	ID          – primary key identifier of the user.
//	Username    – unique login name ("me" is reserved for the self endpoint).
//	Email       – unique email address the confirmation code is sent to.
//	FirstName   – optional given name.
//	LastName    – optional family name.
//	Bio         – optional free-form text about the user.
//	Role        – one of user, moderator, admin.
//	IsActive    – whether the account may authenticate.
//	IsSuperuser – grants admin powers regardless of Role.
//	CreatedAt   – timestamp of creation.
//	UpdatedAt   – timestamp of last update.
type User struct {
	ID          uint64    // users.id
	Username    string    // users.username
	Email       string    // users.email
	FirstName   string    // users.first_name
	LastName    string    // users.last_name
	Bio         string    // users.bio
	Role        string    // users.role
	IsActive    bool      // users.is_active
	IsSuperuser bool      // users.is_superuser
	CreatedAt   time.Time // users.created_at
	UpdatedAt   time.Time // users.updated_at
}
