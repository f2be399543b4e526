package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/title-review-api/internal/model"
)

// Sentinel errors for category persistence.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategorySlugUsed = errors.New("category slug already exists")
)

// CategoryRepo manages persistence for categories.  Categories are looked
// up by slug everywhere except the titles join, which uses the numeric id.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo constructs a CategoryRepo with the given DB handle.
func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Create inserts a category.  The slug must already be normalized to lower
// case by the caller.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, slug) VALUES (?,?)", c.Name, c.Slug)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrCategorySlugUsed
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetBySlug fetches one category by slug.
func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, slug FROM categories WHERE slug=? LIMIT 1", slug).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err == sql.ErrNoRows {
		return c, ErrCategoryNotFound
	}
	return c, err
}

// List returns categories ordered by name, optionally filtered by a
// substring match on name or slug.
func (r *CategoryRepo) List(ctx context.Context, search string) ([]model.Category, error) {
	q := "SELECT id, name, slug FROM categories"
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

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteBySlug removes a category.  Titles that referenced it keep existing
// with a NULL category.
func (r *CategoryRepo) DeleteBySlug(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE slug=?", slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
