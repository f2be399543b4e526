// Package repository contains the data access layer.  Each entity gets its
// own repository struct over *sql.DB with hand-written SQL.  Failure cases
// that handlers need to tell apart are exposed as sentinel errors defined
// next to the repository that produces them.
package repository

import "strings"

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error number 1062), raised when an INSERT or UPDATE violates a unique
// key.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}
