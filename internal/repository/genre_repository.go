package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/title-review-api/internal/model"
)

// Sentinel errors for genre persistence.
var (
	ErrGenreNotFound = errors.New("genre not found")
	ErrGenreSlugUsed = errors.New("genre slug already exists")
)

// GenreRepo manages persistence for genres.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo constructs a GenreRepo with the given DB handle.
func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{db: db} }

// Create inserts a genre.  The slug must already be normalized to lower
// case by the caller.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO genres (name, slug) VALUES (?,?)", g.Name, g.Slug)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrGenreSlugUsed
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// GetBySlug fetches one genre by slug.
func (r *GenreRepo) GetBySlug(ctx context.Context, slug string) (model.Genre, error) {
	var g model.Genre
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, slug FROM genres WHERE slug=? LIMIT 1", slug).
		Scan(&g.ID, &g.Name, &g.Slug)
	if err == sql.ErrNoRows {
		return g, ErrGenreNotFound
	}
	return g, err
}

// List returns genres ordered by name, optionally filtered by a substring
// match on name or slug.
func (r *GenreRepo) List(ctx context.Context, search string) ([]model.Genre, error) {
	q := "SELECT id, name, slug FROM genres"
	args := []interface{}{}
	if search != "" {
		q += " WHERE name LIKE ? OR slug LIKE ?"
		like := "%" + search + "%"
		args = append(args, like, like)
	}
	q += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Genre
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// DeleteBySlug removes a genre and its join rows.
func (r *GenreRepo) DeleteBySlug(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM genres WHERE slug=?", slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrGenreNotFound
	}
	return nil
}
