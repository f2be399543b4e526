package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/title-review-api/internal/model"
)

// Sentinel errors for review persistence.
var (
	ErrReviewNotFound = errors.New("review not found")
	// ErrReviewExists is returned when the (title, author) unique key is
	// violated: one user, one review per title.
	ErrReviewExists = errors.New("review for this title by this author already exists")
)

// ReviewRepo manages persistence for reviews.  All lookups are scoped to a
// title id, matching the nested URL layout, so a review id from another
// title reads as not found.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo constructs a ReviewRepo with the given DB handle.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewSelect = `SELECT r.id, r.title_id, r.author_id, u.username, r.text, r.score, r.pub_date
	FROM reviews r JOIN users u ON u.id = r.author_id`

// Create inserts a review and reloads the stored row into rv.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (title_id, author_id, text, score) VALUES (?,?,?,?)",
		rv.TitleID, rv.AuthorID, rv.Text, rv.Score)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrReviewExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, rv.TitleID, uint64(id))
	if err != nil {
		return err
	}
	*rv = *stored
	return nil
}

// GetByID fetches one review of the given title.
func (r *ReviewRepo) GetByID(ctx context.Context, titleID, id uint64) (*model.Review, error) {
	var rv model.Review
	err := r.db.QueryRowContext(ctx, reviewSelect+" WHERE r.id=? AND r.title_id=?", id, titleID).
		Scan(&rv.ID, &rv.TitleID, &rv.AuthorID, &rv.Author, &rv.Text, &rv.Score, &rv.PubDate)
	if err == sql.ErrNoRows {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// ListByTitle returns the title's reviews newest first.
func (r *ReviewRepo) ListByTitle(ctx context.Context, titleID uint64) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		reviewSelect+" WHERE r.title_id=? ORDER BY r.pub_date DESC, r.id DESC", titleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.TitleID, &rv.AuthorID, &rv.Author,
			&rv.Text, &rv.Score, &rv.PubDate); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// Update rewrites text and score of an existing review.
func (r *ReviewRepo) Update(ctx context.Context, rv *model.Review) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE reviews SET text=?, score=? WHERE id=? AND title_id=?",
		rv.Text, rv.Score, rv.ID, rv.TitleID)
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, rv.TitleID, rv.ID)
	if err != nil {
		return err
	}
	*rv = *stored
	return nil
}

// Delete removes one review of the given title.  Comments cascade.
func (r *ReviewRepo) Delete(ctx context.Context, titleID, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM reviews WHERE id=? AND title_id=?", id, titleID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// Stats returns the mean score and the review count for a title.  With no
// reviews the average is 0 and count is 0.
func (r *ReviewRepo) Stats(ctx context.Context, titleID uint64) (float64, int, error) {
	var (
		avg   sql.NullFloat64
		count int
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT AVG(score), COUNT(*) FROM reviews WHERE title_id=?", titleID).
		Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	return avg.Float64, count, nil
}
