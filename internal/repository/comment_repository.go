package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/title-review-api/internal/model"
)

// ErrCommentNotFound indicates that a comment was not located in the DB.
var ErrCommentNotFound = errors.New("comment not found")

// CommentRepo manages persistence for comments.  Lookups are scoped to a
// review id, the same way reviews are scoped to a title.
type CommentRepo struct {
	db *sql.DB
}

// NewCommentRepo constructs a CommentRepo with the given DB handle.
func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{db: db} }

const commentSelect = `SELECT c.id, c.review_id, c.author_id, u.username, c.text, c.pub_date
	FROM comments c JOIN users u ON u.id = c.author_id`

// Create inserts a comment and reloads the stored row into cm.
func (r *CommentRepo) Create(ctx context.Context, cm *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (review_id, author_id, text) VALUES (?,?,?)",
		cm.ReviewID, cm.AuthorID, cm.Text)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, cm.ReviewID, uint64(id))
	if err != nil {
		return err
	}
	*cm = *stored
	return nil
}

// GetByID fetches one comment of the given review.
func (r *CommentRepo) GetByID(ctx context.Context, reviewID, id uint64) (*model.Comment, error) {
	var cm model.Comment
	err := r.db.QueryRowContext(ctx, commentSelect+" WHERE c.id=? AND c.review_id=?", id, reviewID).
		Scan(&cm.ID, &cm.ReviewID, &cm.AuthorID, &cm.Author, &cm.Text, &cm.PubDate)
	if err == sql.ErrNoRows {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

// ListByReview returns the review's comments newest first.
func (r *CommentRepo) ListByReview(ctx context.Context, reviewID uint64) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		commentSelect+" WHERE c.review_id=? ORDER BY c.pub_date DESC, c.id DESC", reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Comment
	for rows.Next() {
		var cm model.Comment
		if err := rows.Scan(&cm.ID, &cm.ReviewID, &cm.AuthorID, &cm.Author,
			&cm.Text, &cm.PubDate); err != nil {
			return nil, err
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

// Update rewrites the text of an existing comment.
func (r *CommentRepo) Update(ctx context.Context, cm *model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE comments SET text=? WHERE id=? AND review_id=?",
		cm.Text, cm.ID, cm.ReviewID)
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, cm.ReviewID, cm.ID)
	if err != nil {
		return err
	}
	*cm = *stored
	return nil
}

// Delete removes one comment of the given review.
func (r *CommentRepo) Delete(ctx context.Context, reviewID, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM comments WHERE id=? AND review_id=?", id, reviewID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCommentNotFound
	}
	return nil
}
