package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// GenreHandler implements the genre catalog, mirroring CategoryHandler.
type GenreHandler struct {
	Genres *repository.GenreRepo
}

// NewGenreHandler constructs a GenreHandler.
func NewGenreHandler(genres *repository.GenreRepo) *GenreHandler {
	return &GenreHandler{Genres: genres}
}

// List returns all genres; ?search= filters by name or slug.
func (h *GenreHandler) List(c echo.Context) error {
	items, err := h.Genres.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]slugItemResp, 0, len(items))
	for _, it := range items {
		out = append(out, slugItemResp{Name: it.Name, Slug: it.Slug})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Create adds a genre (admin only; enforced by route middleware).
func (h *GenreHandler) Create(c echo.Context) error {
	var req slugItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if fieldErrs := validSlugItem(&req); fieldErrs != nil {
		return c.JSON(http.StatusBadRequest, fieldErrs)
	}
	g := model.Genre{Name: req.Name, Slug: req.Slug}
	if err := h.Genres.Create(c.Request().Context(), &g); err != nil {
		if errors.Is(err, repository.ErrGenreSlugUsed) {
			return c.JSON(http.StatusBadRequest, echo.Map{"slug": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, slugItemResp{Name: g.Name, Slug: g.Slug})
}

// Delete removes a genre by slug (admin only).
func (h *GenreHandler) Delete(c echo.Context) error {
	err := h.Genres.DeleteBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrGenreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
