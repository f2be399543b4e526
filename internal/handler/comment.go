package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/auth"
	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// CommentHandler implements comments nested under a review.  Comments do
// not affect ratings, so no events are published here.
type CommentHandler struct {
	Titles   titleGetter
	Reviews  reviewStore
	Comments *repository.CommentRepo
}

// NewCommentHandler constructs a CommentHandler.
func NewCommentHandler(titles titleGetter, reviews reviewStore, comments *repository.CommentRepo) *CommentHandler {
	return &CommentHandler{Titles: titles, Reviews: reviews, Comments: comments}
}

type commentReq struct {
	Text *string `json:"text"`
}

type commentResp struct {
	ID      uint64 `json:"id"`
	Author  string `json:"author"`
	Text    string `json:"text"`
	PubDate string `json:"pub_date"`
}

func toCommentResp(cm model.Comment) commentResp {
	return commentResp{
		ID:      cm.ID,
		Author:  cm.Author,
		Text:    cm.Text,
		PubDate: cm.PubDate.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// reviewID resolves :title_id and :id of the parent review and verifies
// both exist.  On failure the response has already been written.
func (h *CommentHandler) reviewID(c echo.Context) (uint64, bool) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid title id"})
		return 0, false
	}
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
		return 0, false
	}
	if _, err := h.Titles.GetByID(c.Request().Context(), titleID); err != nil {
		if errors.Is(err, repository.ErrTitleNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return 0, false
	}
	if _, err := h.Reviews.GetByID(c.Request().Context(), titleID, reviewID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return 0, false
	}
	return reviewID, true
}

// List returns all comments of a review, newest first.  Public.
func (h *CommentHandler) List(c echo.Context) error {
	reviewID, ok := h.reviewID(c)
	if !ok {
		return nil
	}
	items, err := h.Comments.ListByReview(c.Request().Context(), reviewID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]commentResp, 0, len(items))
	for _, cm := range items {
		out = append(out, toCommentResp(cm))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get returns one comment of a review.
func (h *CommentHandler) Get(c echo.Context) error {
	reviewID, ok := h.reviewID(c)
	if !ok {
		return nil
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cm, err := h.Comments.GetByID(c.Request().Context(), reviewID, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toCommentResp(*cm))
}

// Create adds a comment to a review.  Authenticated users only.
func (h *CommentHandler) Create(c echo.Context) error {
	u := currentUser(c)
	if !auth.CanCreateContribution(u) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	reviewID, ok := h.reviewID(c)
	if !ok {
		return nil
	}

	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Text == nil || strings.TrimSpace(*req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"text": "required field"})
	}

	cm := model.Comment{ReviewID: reviewID, AuthorID: u.ID, Text: *req.Text}
	if err := h.Comments.Create(c.Request().Context(), &cm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toCommentResp(cm))
}

// Patch updates a comment's text.  Author, moderator or admin.
func (h *CommentHandler) Patch(c echo.Context) error {
	u := currentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	reviewID, ok := h.reviewID(c)
	if !ok {
		return nil
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cm, err := h.Comments.GetByID(c.Request().Context(), reviewID, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !auth.CanModifyContribution(u, cm.AuthorID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you do not have permission to modify this comment"})
	}

	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Text == nil || strings.TrimSpace(*req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"text": "required field"})
	}
	cm.Text = *req.Text

	if err := h.Comments.Update(c.Request().Context(), cm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toCommentResp(*cm))
}

// Delete removes a comment.  Author, moderator or admin.
func (h *CommentHandler) Delete(c echo.Context) error {
	u := currentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	reviewID, ok := h.reviewID(c)
	if !ok {
		return nil
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cm, err := h.Comments.GetByID(c.Request().Context(), reviewID, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !auth.CanModifyContribution(u, cm.AuthorID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you do not have permission to delete this comment"})
	}
	if err := h.Comments.Delete(c.Request().Context(), reviewID, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
