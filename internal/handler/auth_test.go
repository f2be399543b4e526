package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/title-review-api/internal/auth"
	"github.com/iliyamo/title-review-api/internal/event"
	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// fakeUserStore is an in-memory userStore.
type fakeUserStore struct {
	users  map[uint64]model.User
	nextID uint64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]model.User{}, nextID: 1}
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) Create(_ context.Context, u *model.User) error {
	u.ID = s.nextID
	s.nextID++
	u.IsActive = true
	s.users[u.ID] = *u
	return nil
}

func newAuthHandler(store userStore) (*AuthHandler, *event.Bus) {
	bus := event.New()
	issuer := auth.NewTokenIssuer("test-secret", 5*24*time.Hour)
	return NewAuthHandler(store, auth.NewSigner("test-secret"), issuer, bus), bus
}

func postJSON(t *testing.T, h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestSignupCreatesUserAndPublishes(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	h, bus := newAuthHandler(store)

	var got []event.UserRegistered
	bus.SubscribeUserRegistered(func(_ context.Context, ev event.UserRegistered) {
		got = append(got, ev)
	})

	rec, resp := postJSON(t, h.Signup, `{"username":"alice","email":"alice@example.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", resp["username"])
	assert.Equal(t, "alice@example.com", resp["email"])
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].User.Username)
	assert.Equal(t, model.RoleUser, got[0].User.Role)
}

func TestSignupReservedUsername(t *testing.T) {
	t.Parallel()

	for _, username := range []string{"me", "Me", "ME"} {
		h, _ := newAuthHandler(newFakeUserStore())
		rec, resp := postJSON(t, h.Signup,
			`{"username":"`+username+`","email":"me@example.com"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code, username)
		assert.Contains(t, resp, "username", username)
	}
}

func TestSignupFieldValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		body   string
		fields []string
	}{
		{"both missing", `{}`, []string{"username", "email"}},
		{"bad charset", `{"username":"has space","email":"a@b.com"}`, []string{"username"}},
		{"bad email", `{"username":"alice","email":"not-an-email"}`, []string{"email"}},
		{"too long username", `{"username":"` + strings.Repeat("a", 151) + `","email":"a@b.com"}`, []string{"username"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h, _ := newAuthHandler(newFakeUserStore())
			rec, resp := postJSON(t, h.Signup, tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			for _, f := range tc.fields {
				assert.Contains(t, resp, f)
			}
		})
	}
}

func TestSignupIdempotentOnExactPair(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	h, bus := newAuthHandler(store)

	published := 0
	bus.SubscribeUserRegistered(func(context.Context, event.UserRegistered) { published++ })

	body := `{"username":"alice","email":"alice@example.com"}`
	rec1, _ := postJSON(t, h.Signup, body)
	rec2, resp := postJSON(t, h.Signup, body)

	assert.Equal(t, http.StatusOK, rec1.Code)
	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, "alice", resp["username"])
	assert.Len(t, store.users, 1)
	// The code is re-sent on every accepted signup.
	assert.Equal(t, 2, published)
}

func TestSignupPartialConflict(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	h, _ := newAuthHandler(store)
	postJSON(t, h.Signup, `{"username":"alice","email":"alice@example.com"}`)

	cases := []struct {
		name   string
		body   string
		fields []string
	}{
		{"username taken", `{"username":"alice","email":"other@example.com"}`, []string{"username"}},
		{"email taken", `{"username":"bob","email":"alice@example.com"}`, []string{"email"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := postJSON(t, h.Signup, tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			for _, f := range tc.fields {
				assert.Contains(t, resp, f)
			}
			assert.Len(t, store.users, 1)
		})
	}
}

func TestTokenExchange(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	h, _ := newAuthHandler(store)
	postJSON(t, h.Signup, `{"username":"alice","email":"alice@example.com"}`)

	code := h.Issuer.ConfirmationCode("alice")
	rec, resp := postJSON(t, h.Token,
		`{"username":"alice","confirmation_code":"`+code+`"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	token, ok := resp["token"].(string)
	require.True(t, ok)

	userID, err := auth.NewTokenVerifier("test-secret").VerifyAccessToken(token)
	require.NoError(t, err)

	u, err := store.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
}

func TestTokenRejections(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	h, _ := newAuthHandler(store)
	postJSON(t, h.Signup, `{"username":"alice","email":"alice@example.com"}`)

	t.Run("missing fields", func(t *testing.T) {
		rec, resp := postJSON(t, h.Token, `{"username":"alice"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, resp, "confirmation_code")

		rec, resp = postJSON(t, h.Token, `{"confirmation_code":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, resp, "username")
	})

	t.Run("unknown user", func(t *testing.T) {
		code := h.Issuer.ConfirmationCode("ghost")
		rec, _ := postJSON(t, h.Token,
			`{"username":"ghost","confirmation_code":"`+code+`"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("code for another user", func(t *testing.T) {
		code := h.Issuer.ConfirmationCode("bob")
		rec, resp := postJSON(t, h.Token,
			`{"username":"alice","confirmation_code":"`+code+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, resp, "confirmation_code")
	})

	t.Run("garbage code", func(t *testing.T) {
		rec, resp := postJSON(t, h.Token,
			`{"username":"alice","confirmation_code":"not-a-code"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, resp, "confirmation_code")
	})
}
