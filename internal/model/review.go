package model

import "time"

// Review is a user's opinion of a title together with a score in [1,10].
// A user may post at most one review per title; the database enforces this
// with a unique key over (title_id, author_id).
//
// Fields:
//
//	ID       – primary key identifier.
//	TitleID  – reviewed title.
//	AuthorID – user who wrote the review.
//	Author   – author's username (joined for responses).
//	Text     – body of the review.
//	Score    – score in [1,10].
//	PubDate  – creation timestamp; listings are ordered newest first.
type Review struct {
	ID       uint64    // reviews.id
	TitleID  uint64    // reviews.title_id
	AuthorID uint64    // reviews.author_id
	Author   string    // users.username of the author
	Text     string    // reviews.text
	Score    int       // reviews.score
	PubDate  time.Time // reviews.pub_date
}

// Comment is a remark attached to a review.  Comments never influence the
// title's rating.
//
// Fields:
//
//	ID       – primary key identifier.
//	ReviewID – review being commented on.
//	AuthorID – user who wrote the comment.
//	Author   – author's username (joined for responses).
//	Text     – body of the comment.
//	PubDate  – creation timestamp; listings are ordered newest first.
type Comment struct {
	ID       uint64    // comments.id
	ReviewID uint64    // comments.review_id
	AuthorID uint64    // comments.author_id
	Author   string    // users.username of the author
	Text     string    // comments.text
	PubDate  time.Time // comments.pub_date
}
