package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/title-review-api/internal/model"
)

// ErrTitleNotFound indicates that a title was not located in the DB.
var ErrTitleNotFound = errors.New("title not found")

// TitleFilter narrows List results.  Zero values mean "no constraint".
type TitleFilter struct {
	CategorySlug string // exact category slug
	GenreSlug    string // titles carrying this genre slug
	Year         *int   // exact year
	Name         string // substring match on name
}

// TitleRepo manages persistence for titles, including the genre join
// table.  The rating column is written exclusively by UpdateRating so the
// aggregator stays the single writer of the derived value.
type TitleRepo struct {
	db *sql.DB
}

// NewTitleRepo constructs a TitleRepo with the given DB handle.
func NewTitleRepo(db *sql.DB) *TitleRepo { return &TitleRepo{db: db} }

// Create inserts a title together with its genre links in one transaction
// and assigns the generated id back to t.
func (r *TitleRepo) Create(ctx context.Context, t *model.Title, genreIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO titles (name, year, description, category_id) VALUES (?,?,?,?)",
		t.Name, t.Year, t.Description, t.CategoryID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)

	for _, gid := range genreIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO title_genres (title_id, genre_id) VALUES (?,?)", t.ID, gid); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetByID fetches a title with its category and genres joined in.
func (r *TitleRepo) GetByID(ctx context.Context, id uint64) (*model.Title, error) {
	const q = `SELECT t.id, t.name, t.year, t.rating, t.description, t.category_id, c.name, c.slug
		FROM titles t LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = ?`
	var (
		t       model.Title
		rating  sql.NullInt64
		catID   sql.NullInt64
		catName sql.NullString
		catSlug sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&t.ID, &t.Name, &t.Year, &rating, &t.Description, &catID, &catName, &catSlug)
	if err == sql.ErrNoRows {
		return nil, ErrTitleNotFound
	}
	if err != nil {
		return nil, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		t.Rating = &v
	}
	if catID.Valid {
		cid := uint64(catID.Int64)
		t.CategoryID = &cid
		t.Category = &model.Category{ID: cid, Name: catName.String, Slug: catSlug.String}
	}
	genres, err := r.genresOf(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Genres = genres
	return &t, nil
}

// List returns titles matching the filter, with categories joined and
// genres loaded per row, ordered by id.
func (r *TitleRepo) List(ctx context.Context, f TitleFilter) ([]model.Title, error) {
	q := `SELECT DISTINCT t.id, t.name, t.year, t.rating, t.description, t.category_id, c.name, c.slug
		FROM titles t
		LEFT JOIN categories c ON c.id = t.category_id
		LEFT JOIN title_genres tg ON tg.title_id = t.id
		LEFT JOIN genres g ON g.id = tg.genre_id
		WHERE 1=1`
	args := []interface{}{}
	if f.CategorySlug != "" {
		q += " AND c.slug = ?"
		args = append(args, f.CategorySlug)
	}
	if f.GenreSlug != "" {
		q += " AND g.slug = ?"
		args = append(args, f.GenreSlug)
	}
	if f.Year != nil {
		q += " AND t.year = ?"
		args = append(args, *f.Year)
	}
	if f.Name != "" {
		q += " AND t.name LIKE ?"
		args = append(args, "%"+f.Name+"%")
	}
	q += " ORDER BY t.id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Title
	for rows.Next() {
		var (
			t       model.Title
			rating  sql.NullInt64
			catID   sql.NullInt64
			catName sql.NullString
			catSlug sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Year, &rating, &t.Description,
			&catID, &catName, &catSlug); err != nil {
			return nil, err
		}
		if rating.Valid {
			v := int(rating.Int64)
			t.Rating = &v
		}
		if catID.Valid {
			cid := uint64(catID.Int64)
			t.CategoryID = &cid
			t.Category = &model.Category{ID: cid, Name: catName.String, Slug: catSlug.String}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		genres, err := r.genresOf(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Genres = genres
	}
	return out, nil
}

// Update rewrites the descriptive columns of an existing title and, when
// setGenres is true, replaces its genre links.  The rating column is left
// untouched.
func (r *TitleRepo) Update(ctx context.Context, t *model.Title, genreIDs []uint64, setGenres bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE titles SET name=?, year=?, description=?, category_id=? WHERE id=?",
		t.Name, t.Year, t.Description, t.CategoryID, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		// Distinguish "row missing" from "nothing changed".
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM titles WHERE id=?", t.ID).Scan(&exists); err == sql.ErrNoRows {
			return ErrTitleNotFound
		} else if err != nil {
			return err
		}
	}
	if setGenres {
		if _, err := tx.ExecContext(ctx, "DELETE FROM title_genres WHERE title_id=?", t.ID); err != nil {
			return err
		}
		for _, gid := range genreIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO title_genres (title_id, genre_id) VALUES (?,?)", t.ID, gid); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Delete removes a title.  Reviews and genre links cascade in the DB.
func (r *TitleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM titles WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTitleNotFound
	}
	return nil
}

// UpdateRating persists the derived rating.  A nil rating stores NULL.
func (r *TitleRepo) UpdateRating(ctx context.Context, id uint64, rating *int) error {
	res, err := r.db.ExecContext(ctx, "UPDATE titles SET rating=? WHERE id=?", rating, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM titles WHERE id=?", id).Scan(&exists); err == sql.ErrNoRows {
			return ErrTitleNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

func (r *TitleRepo) genresOf(ctx context.Context, titleID uint64) ([]model.Genre, error) {
	const q = `SELECT g.id, g.name, g.slug FROM genres g
		JOIN title_genres tg ON tg.genre_id = g.id
		WHERE tg.title_id = ? ORDER BY g.name`
	rows, err := r.db.QueryContext(ctx, q, titleID)
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
