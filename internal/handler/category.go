package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// CategoryHandler implements the category catalog: public listing, admin
// create and delete.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

// NewCategoryHandler constructs a CategoryHandler.
func NewCategoryHandler(categories *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

type slugItemReq struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type slugItemResp struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// validSlugItem validates the shared name/slug shape of categories and
// genres and returns the normalized (lowercased) slug.
func validSlugItem(req *slugItemReq) echo.Map {
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	fieldErrs := echo.Map{}
	if req.Name == "" {
		fieldErrs["name"] = "required field"
	} else if len(req.Name) > 256 {
		fieldErrs["name"] = "must be at most 256 characters"
	}
	if req.Slug == "" {
		fieldErrs["slug"] = "required field"
	} else if len(req.Slug) > 50 {
		fieldErrs["slug"] = "must be at most 50 characters"
	}
	if len(fieldErrs) > 0 {
		return fieldErrs
	}
	return nil
}

// List returns all categories; ?search= filters by name or slug.
func (h *CategoryHandler) List(c echo.Context) error {
	items, err := h.Categories.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]slugItemResp, 0, len(items))
	for _, it := range items {
		out = append(out, slugItemResp{Name: it.Name, Slug: it.Slug})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Create adds a category (admin only; enforced by route middleware).
func (h *CategoryHandler) Create(c echo.Context) error {
	var req slugItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if fieldErrs := validSlugItem(&req); fieldErrs != nil {
		return c.JSON(http.StatusBadRequest, fieldErrs)
	}
	cat := model.Category{Name: req.Name, Slug: req.Slug}
	if err := h.Categories.Create(c.Request().Context(), &cat); err != nil {
		if errors.Is(err, repository.ErrCategorySlugUsed) {
			return c.JSON(http.StatusBadRequest, echo.Map{"slug": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, slugItemResp{Name: cat.Name, Slug: cat.Slug})
}

// Delete removes a category by slug (admin only).
func (h *CategoryHandler) Delete(c echo.Context) error {
	err := h.Categories.DeleteBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
