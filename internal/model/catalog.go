package model

// Category represents a broad kind of work (film, book, music and so on).
// Each title belongs to at most one category.  Categories are addressed by
// slug in the API, not by numeric id.
//
// Fields:
//
//	ID   – primary key identifier.
//	Name – human readable name.
//	Slug – unique lowercase identifier used in URLs.
type Category struct {
	ID   uint64 // categories.id
	Name string // categories.name
	Slug string // categories.slug
}

// Genre represents a genre tag.  A title may carry any number of genres
// through the title_genres join table.
//
// Fields:
//
//	ID   – primary key identifier.
//	Name – human readable name.
//	Slug – unique lowercase identifier used in URLs.
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name
	Slug string // genres.slug
}
