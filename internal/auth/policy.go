package auth

import "github.com/iliyamo/title-review-api/internal/model"

// The permission policy is a set of pure functions over the caller's role
// and, for contributions, an ownership predicate.  Anonymous callers are
// represented by a nil *model.User.  Grants combine with OR: satisfying any
// one condition is enough.  Read access to the catalog, reviews and
// comments is universal and never consults these functions.

// IsAdmin reports whether u has admin powers.  A superuser counts as admin
// no matter what its role column says.
func IsAdmin(u model.User) bool {
	return u.Role == model.RoleAdmin || u.IsSuperuser
}

// IsModerator reports whether u holds the moderator role.
func IsModerator(u model.User) bool {
	return u.Role == model.RoleModerator
}

// CanManageCatalog reports whether the caller may create or delete
// categories, genres and titles.  Admin only.
func CanManageCatalog(u *model.User) bool {
	return u != nil && IsAdmin(*u)
}

// CanCreateContribution reports whether the caller may post a review or
// comment.  Any authenticated user qualifies.
func CanCreateContribution(u *model.User) bool {
	return u != nil
}

// CanModifyContribution reports whether the caller may update or delete a
// review or comment written by authorID.  The author, a moderator and an
// admin all qualify; everyone else, including anonymous, is denied.
func CanModifyContribution(u *model.User, authorID uint64) bool {
	if u == nil {
		return false
	}
	return u.ID == authorID || IsModerator(*u) || IsAdmin(*u)
}

// CanManageUsers reports whether the caller may list, inspect, update or
// delete arbitrary users.  Admin only; the self endpoint is separate and
// open to any authenticated caller.
func CanManageUsers(u *model.User) bool {
	return u != nil && IsAdmin(*u)
}
