package model

// Title represents a reviewable work as stored in the `titles` table.
//
// Rating is a derived aggregate: the arithmetic mean of all review scores
// for the title, truncated toward zero, or nil while the title has no
// reviews.  It is maintained by the rating aggregator in response to review
// mutations, not recomputed on read, so it may briefly lag behind the
// review set.
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – name of the work.
//	Year        – release year.
//	Rating      – derived aggregate score (nullable).
//	Description – optional free-form description.
//	CategoryID  – optional reference to categories.id.
type Title struct {
	ID          uint64 // titles.id
	Name        string // titles.name
	Year        int    // titles.year
	Rating      *int   // titles.rating (NULL until reviews exist)
	Description string // titles.description
	CategoryID  *uint64
	Category    *Category // joined category row, when loaded
	Genres      []Genre   // joined genre rows, when loaded
}
