package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/auth"
	"github.com/iliyamo/title-review-api/internal/event"
	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// titleGetter is the slice of the title repository the review handler needs
// to check that the parent title exists.
type titleGetter interface {
	GetByID(ctx context.Context, id uint64) (*model.Title, error)
}

// reviewStore covers the review repository operations the handler uses.
type reviewStore interface {
	Create(ctx context.Context, r *model.Review) error
	GetByID(ctx context.Context, titleID, id uint64) (*model.Review, error)
	ListByTitle(ctx context.Context, titleID uint64) ([]model.Review, error)
	Update(ctx context.Context, r *model.Review) error
	Delete(ctx context.Context, titleID, id uint64) error
}

// ReviewHandler implements reviews nested under a title.  One review per
// author per title; every successful mutation publishes a review-mutated
// event so the title's rating gets recomputed.
type ReviewHandler struct {
	Titles  titleGetter
	Reviews reviewStore
	Bus     *event.Bus
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(titles titleGetter, reviews reviewStore, bus *event.Bus) *ReviewHandler {
	return &ReviewHandler{Titles: titles, Reviews: reviews, Bus: bus}
}

type reviewReq struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type reviewResp struct {
	ID      uint64 `json:"id"`
	Author  string `json:"author"`
	Text    string `json:"text"`
	Score   int    `json:"score"`
	PubDate string `json:"pub_date"`
}

func toReviewResp(r model.Review) reviewResp {
	return reviewResp{
		ID:      r.ID,
		Author:  r.Author,
		Text:    r.Text,
		Score:   r.Score,
		PubDate: r.PubDate.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// titleID resolves the :title_id path param and checks the title exists.
// A nil title with a nil error means a response has already been written.
func (h *ReviewHandler) titleID(c echo.Context) (uint64, bool) {
	id, ok := pathID(c, "title_id")
	if !ok {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid title id"})
		return 0, false
	}
	if _, err := h.Titles.GetByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrTitleNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return 0, false
	}
	return id, true
}

// List returns all reviews of a title, newest first.  Public.
func (h *ReviewHandler) List(c echo.Context) error {
	titleID, ok := h.titleID(c)
	if !ok {
		return nil
	}
	items, err := h.Reviews.ListByTitle(c.Request().Context(), titleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]reviewResp, 0, len(items))
	for _, r := range items {
		out = append(out, toReviewResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get returns one review of a title.
func (h *ReviewHandler) Get(c echo.Context) error {
	titleID, ok := h.titleID(c)
	if !ok {
		return nil
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	r, err := h.Reviews.GetByID(c.Request().Context(), titleID, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toReviewResp(*r))
}

// Create adds a review.  Authenticated users only, one review per title
// per author.
func (h *ReviewHandler) Create(c echo.Context) error {
	u := currentUser(c)
	if !auth.CanCreateContribution(u) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	titleID, ok := h.titleID(c)
	if !ok {
		return nil
	}

	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fieldErrs := echo.Map{}
	if req.Text == nil || strings.TrimSpace(*req.Text) == "" {
		fieldErrs["text"] = "required field"
	}
	if req.Score == nil {
		fieldErrs["score"] = "required field"
	} else if *req.Score < 1 || *req.Score > 10 {
		fieldErrs["score"] = "score must be between 1 and 10"
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, fieldErrs)
	}

	r := model.Review{
		TitleID:  titleID,
		AuthorID: u.ID,
		Text:     *req.Text,
		Score:    *req.Score,
	}
	if err := h.Reviews.Create(c.Request().Context(), &r); err != nil {
		if errors.Is(err, repository.ErrReviewExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "you have already reviewed this title"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	h.Bus.PublishReviewMutated(c.Request().Context(), event.ReviewMutated{TitleID: titleID})
	return c.JSON(http.StatusCreated, toReviewResp(r))
}

// Patch updates a review's text or score.  Author, moderator or admin.
func (h *ReviewHandler) Patch(c echo.Context) error {
	u := currentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	titleID, ok := h.titleID(c)
	if !ok {
		return nil
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	r, err := h.Reviews.GetByID(c.Request().Context(), titleID, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !auth.CanModifyContribution(u, r.AuthorID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you do not have permission to modify this review"})
	}

	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Text != nil {
		if strings.TrimSpace(*req.Text) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"text": "must not be empty"})
		}
		r.Text = *req.Text
	}
	if req.Score != nil {
		if *req.Score < 1 || *req.Score > 10 {
			return c.JSON(http.StatusBadRequest, echo.Map{"score": "score must be between 1 and 10"})
		}
		r.Score = *req.Score
	}

	if err := h.Reviews.Update(c.Request().Context(), r); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	h.Bus.PublishReviewMutated(c.Request().Context(), event.ReviewMutated{TitleID: titleID})
	return c.JSON(http.StatusOK, toReviewResp(*r))
}

// Delete removes a review.  Author, moderator or admin.
func (h *ReviewHandler) Delete(c echo.Context) error {
	u := currentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	titleID, ok := h.titleID(c)
	if !ok {
		return nil
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	r, err := h.Reviews.GetByID(c.Request().Context(), titleID, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !auth.CanModifyContribution(u, r.AuthorID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you do not have permission to delete this review"})
	}
	if err := h.Reviews.Delete(c.Request().Context(), titleID, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.Bus.PublishReviewMutated(c.Request().Context(), event.ReviewMutated{TitleID: titleID})
	return c.NoContent(http.StatusNoContent)
}
