package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/title-review-api/internal/event"
	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// fakeTitles serves title existence checks.
type fakeTitles struct {
	ids map[uint64]bool
}

func (f *fakeTitles) GetByID(_ context.Context, id uint64) (*model.Title, error) {
	if !f.ids[id] {
		return nil, repository.ErrTitleNotFound
	}
	return &model.Title{ID: id, Name: "Title"}, nil
}

// fakeReviews is an in-memory reviewStore enforcing the one-review-per-
// author-per-title rule.
type fakeReviews struct {
	reviews map[uint64]model.Review
	nextID  uint64
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{reviews: map[uint64]model.Review{}, nextID: 1}
}

func (f *fakeReviews) Create(_ context.Context, r *model.Review) error {
	for _, have := range f.reviews {
		if have.TitleID == r.TitleID && have.AuthorID == r.AuthorID {
			return repository.ErrReviewExists
		}
	}
	r.ID = f.nextID
	f.nextID++
	r.PubDate = time.Now().UTC()
	f.reviews[r.ID] = *r
	return nil
}

func (f *fakeReviews) GetByID(_ context.Context, titleID, id uint64) (*model.Review, error) {
	r, ok := f.reviews[id]
	if !ok || r.TitleID != titleID {
		return nil, repository.ErrReviewNotFound
	}
	return &r, nil
}

func (f *fakeReviews) ListByTitle(_ context.Context, titleID uint64) ([]model.Review, error) {
	var out []model.Review
	for _, r := range f.reviews {
		if r.TitleID == titleID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) Update(_ context.Context, r *model.Review) error {
	if _, ok := f.reviews[r.ID]; !ok {
		return repository.ErrReviewNotFound
	}
	f.reviews[r.ID] = *r
	return nil
}

func (f *fakeReviews) Delete(_ context.Context, titleID, id uint64) error {
	r, ok := f.reviews[id]
	if !ok || r.TitleID != titleID {
		return repository.ErrReviewNotFound
	}
	delete(f.reviews, id)
	return nil
}

type reviewFixture struct {
	handler *ReviewHandler
	reviews *fakeReviews
	events  *[]event.ReviewMutated
}

func newReviewFixture() reviewFixture {
	bus := event.New()
	events := &[]event.ReviewMutated{}
	bus.SubscribeReviewMutated(func(_ context.Context, ev event.ReviewMutated) {
		*events = append(*events, ev)
	})
	reviews := newFakeReviews()
	titles := &fakeTitles{ids: map[uint64]bool{1: true}}
	return reviewFixture{
		handler: NewReviewHandler(titles, reviews, bus),
		reviews: reviews,
		events:  events,
	}
}

// reviewCall routes a request through a bare echo context with the nested
// path params set, optionally authenticated as u.
func reviewCall(t *testing.T, h echo.HandlerFunc, method, body string, u *model.User, titleID uint64, reviewID uint64) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if reviewID != 0 {
		c.SetParamNames("title_id", "id")
		c.SetParamValues(strconv.FormatUint(titleID, 10), strconv.FormatUint(reviewID, 10))
	} else {
		c.SetParamNames("title_id")
		c.SetParamValues(strconv.FormatUint(titleID, 10))
	}
	if u != nil {
		c.Set("user", *u)
	}
	require.NoError(t, h(c))
	return rec
}

func TestReviewCreatePublishesEvent(t *testing.T) {
	t.Parallel()

	fx := newReviewFixture()
	author := &model.User{ID: 7, Username: "alice", Role: model.RoleUser}

	rec := reviewCall(t, fx.handler.Create, http.MethodPost,
		`{"text":"great","score":9}`, author, 1, 0)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, *fx.events, 1)
	assert.Equal(t, uint64(1), (*fx.events)[0].TitleID)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(9), resp["score"])
}

func TestReviewCreateRejections(t *testing.T) {
	t.Parallel()

	author := &model.User{ID: 7, Username: "alice", Role: model.RoleUser}

	t.Run("anonymous", func(t *testing.T) {
		fx := newReviewFixture()
		rec := reviewCall(t, fx.handler.Create, http.MethodPost,
			`{"text":"great","score":9}`, nil, 1, 0)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, *fx.events)
	})

	t.Run("unknown title", func(t *testing.T) {
		fx := newReviewFixture()
		rec := reviewCall(t, fx.handler.Create, http.MethodPost,
			`{"text":"great","score":9}`, author, 42, 0)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("score out of range", func(t *testing.T) {
		fx := newReviewFixture()
		for _, score := range []string{"0", "11", "-3"} {
			rec := reviewCall(t, fx.handler.Create, http.MethodPost,
				`{"text":"great","score":`+score+`}`, author, 1, 0)
			assert.Equal(t, http.StatusBadRequest, rec.Code, score)
		}
		assert.Empty(t, *fx.events)
	})

	t.Run("second review for same title", func(t *testing.T) {
		fx := newReviewFixture()
		reviewCall(t, fx.handler.Create, http.MethodPost, `{"text":"one","score":5}`, author, 1, 0)
		rec := reviewCall(t, fx.handler.Create, http.MethodPost, `{"text":"two","score":6}`, author, 1, 0)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		// Only the successful create published.
		assert.Len(t, *fx.events, 1)
	})
}

func TestReviewModifyPermissions(t *testing.T) {
	t.Parallel()

	author := model.User{ID: 7, Username: "alice", Role: model.RoleUser}
	other := model.User{ID: 8, Username: "bob", Role: model.RoleUser}
	moderator := model.User{ID: 9, Username: "mod", Role: model.RoleModerator}
	admin := model.User{ID: 10, Username: "root", Role: model.RoleAdmin}

	cases := []struct {
		name string
		user model.User
		want int
	}{
		{"author may edit", author, http.StatusOK},
		{"stranger may not", other, http.StatusForbidden},
		{"moderator may edit", moderator, http.StatusOK},
		{"admin may edit", admin, http.StatusOK},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fx := newReviewFixture()
			reviewCall(t, fx.handler.Create, http.MethodPost,
				`{"text":"first","score":5}`, &author, 1, 0)

			rec := reviewCall(t, fx.handler.Patch, http.MethodPatch,
				`{"score":8}`, &tc.user, 1, 1)

			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, 8, fx.reviews.reviews[1].Score)
				// Create plus patch.
				assert.Len(t, *fx.events, 2)
			} else {
				assert.Equal(t, 5, fx.reviews.reviews[1].Score)
				assert.Len(t, *fx.events, 1)
			}
		})
	}
}

func TestReviewDeletePublishesEvent(t *testing.T) {
	t.Parallel()

	fx := newReviewFixture()
	author := model.User{ID: 7, Username: "alice", Role: model.RoleUser}
	reviewCall(t, fx.handler.Create, http.MethodPost, `{"text":"gone soon","score":3}`, &author, 1, 0)

	rec := reviewCall(t, fx.handler.Delete, http.MethodDelete, "", &author, 1, 1)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, fx.reviews.reviews)
	assert.Len(t, *fx.events, 2)
}

func TestReviewGetAndList(t *testing.T) {
	t.Parallel()

	fx := newReviewFixture()
	author := model.User{ID: 7, Username: "alice", Role: model.RoleUser}
	reviewCall(t, fx.handler.Create, http.MethodPost, `{"text":"readable","score":7}`, &author, 1, 0)

	rec := reviewCall(t, fx.handler.Get, http.MethodGet, "", nil, 1, 1)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = reviewCall(t, fx.handler.List, http.MethodGet, "", nil, 1, 0)
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []reviewResp `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "readable", resp.Items[0].Text)

	rec = reviewCall(t, fx.handler.Get, http.MethodGet, "", nil, 1, 99)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
