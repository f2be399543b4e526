package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// TitleHandler implements the title catalog.  Reads are public; writes are
// admin only.  The rating field is read-only here: it belongs to the
// rating aggregator.
type TitleHandler struct {
	Titles     *repository.TitleRepo
	Categories *repository.CategoryRepo
	Genres     *repository.GenreRepo
}

// NewTitleHandler constructs a TitleHandler.
func NewTitleHandler(titles *repository.TitleRepo, categories *repository.CategoryRepo, genres *repository.GenreRepo) *TitleHandler {
	return &TitleHandler{Titles: titles, Categories: categories, Genres: genres}
}

type titleReq struct {
	Name        *string  `json:"name"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Genre       []string `json:"genre"`
}

type titleResp struct {
	ID          uint64         `json:"id"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Rating      *int           `json:"rating"`
	Description string         `json:"description"`
	Genre       []slugItemResp `json:"genre"`
	Category    *slugItemResp  `json:"category"`
}

func toTitleResp(t model.Title) titleResp {
	resp := titleResp{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       make([]slugItemResp, 0, len(t.Genres)),
	}
	for _, g := range t.Genres {
		resp.Genre = append(resp.Genre, slugItemResp{Name: g.Name, Slug: g.Slug})
	}
	if t.Category != nil {
		resp.Category = &slugItemResp{Name: t.Category.Name, Slug: t.Category.Slug}
	}
	return resp
}

// List returns titles filtered by ?category=, ?genre=, ?year= and ?name=.
func (h *TitleHandler) List(c echo.Context) error {
	f := repository.TitleFilter{
		CategorySlug: c.QueryParam("category"),
		GenreSlug:    c.QueryParam("genre"),
		Name:         c.QueryParam("name"),
	}
	if y := c.QueryParam("year"); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"year": "must be an integer"})
		}
		f.Year = &n
	}
	items, err := h.Titles.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]titleResp, 0, len(items))
	for _, t := range items {
		out = append(out, toTitleResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get returns one title by id.
func (h *TitleHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	t, err := h.Titles.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTitleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toTitleResp(*t))
}

// Create adds a title (admin only).  Category and genres are referenced by
// slug and must exist.
func (h *TitleHandler) Create(c echo.Context) error {
	var req titleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	fieldErrs := echo.Map{}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		fieldErrs["name"] = "required field"
	}
	if req.Year == nil {
		fieldErrs["year"] = "required field"
	} else if msg := validYear(*req.Year); msg != "" {
		fieldErrs["year"] = msg
	}
	if req.Category == nil || *req.Category == "" {
		fieldErrs["category"] = "required field"
	}
	if len(req.Genre) == 0 {
		fieldErrs["genre"] = "required field"
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, fieldErrs)
	}

	ctx := c.Request().Context()
	t := model.Title{Name: strings.TrimSpace(*req.Name), Year: *req.Year}
	if req.Description != nil {
		t.Description = *req.Description
	}

	cat, err := h.Categories.GetBySlug(ctx, *req.Category)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"category": "unknown category"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	t.CategoryID = &cat.ID

	genreIDs, badSlug, err := h.resolveGenres(c, req.Genre)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if badSlug != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"genre": "unknown genre: " + badSlug})
	}

	if err := h.Titles.Create(ctx, &t, genreIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	stored, err := h.Titles.GetByID(ctx, t.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, toTitleResp(*stored))
}

// Patch partially updates a title (admin only).
func (h *TitleHandler) Patch(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	t, err := h.Titles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTitleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var req titleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"name": "must not be empty"})
		}
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Year != nil {
		if msg := validYear(*req.Year); msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"year": msg})
		}
		t.Year = *req.Year
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Category != nil {
		cat, err := h.Categories.GetBySlug(ctx, *req.Category)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"category": "unknown category"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		t.CategoryID = &cat.ID
	}

	var genreIDs []uint64
	setGenres := req.Genre != nil
	if setGenres {
		ids, badSlug, err := h.resolveGenres(c, req.Genre)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if badSlug != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"genre": "unknown genre: " + badSlug})
		}
		genreIDs = ids
	}

	if err := h.Titles.Update(ctx, t, genreIDs, setGenres); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	stored, err := h.Titles.GetByID(ctx, t.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toTitleResp(*stored))
}

// Delete removes a title (admin only).  Its reviews go with it; no rating
// event is needed for a title that no longer exists.
func (h *TitleHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Titles.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrTitleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TitleHandler) resolveGenres(c echo.Context, slugs []string) ([]uint64, string, error) {
	ids := make([]uint64, 0, len(slugs))
	for _, slug := range slugs {
		g, err := h.Genres.GetBySlug(c.Request().Context(), slug)
		if err != nil {
			if errors.Is(err, repository.ErrGenreNotFound) {
				return nil, slug, nil
			}
			return nil, "", err
		}
		ids = append(ids, g.ID)
	}
	return ids, "", nil
}

func validYear(year int) string {
	if year < 0 || year > time.Now().Year() {
		return "enter a valid year"
	}
	return ""
}
