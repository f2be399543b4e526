package handler

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/auth"
	"github.com/iliyamo/title-review-api/internal/event"
	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// userStore is the slice of the user repository the auth endpoints need.
type userStore interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// AuthHandler implements the passwordless signup and token endpoints.
type AuthHandler struct {
	Users  userStore
	Signer *auth.Signer
	Issuer *auth.TokenIssuer
	Bus    *event.Bus
}

// NewAuthHandler bundles the dependencies of the auth endpoints.
func NewAuthHandler(users userStore, signer *auth.Signer, issuer *auth.TokenIssuer, bus *event.Bus) *AuthHandler {
	return &AuthHandler{Users: users, Signer: signer, Issuer: issuer, Bus: bus}
}

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type tokenReq struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// validUsername checks charset, length and the reserved "me" value, which
// would otherwise collide with the self-profile route.
func validUsername(username string) string {
	if username == "" {
		return "required field"
	}
	if len(username) > 150 {
		return "must be at most 150 characters"
	}
	if !usernameRe.MatchString(username) {
		return "may contain only letters, digits and @/./+/-/_ characters"
	}
	if strings.EqualFold(username, "me") {
		return `username can not be "me"`
	}
	return ""
}

func validEmail(email string) string {
	if email == "" {
		return "required field"
	}
	if len(email) > 254 {
		return "must be at most 254 characters"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "enter a valid email address"
	}
	return ""
}

// Signup registers a user and triggers confirmation-code delivery.
// Re-submitting an exactly matching (username, email) pair is idempotent
// and re-sends the code; a pair that collides with an existing user on only
// one of the two fields is a validation error naming the collisions.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	fieldErrs := echo.Map{}
	if msg := validUsername(req.Username); msg != "" {
		fieldErrs["username"] = msg
	}
	if msg := validEmail(req.Email); msg != "" {
		fieldErrs["email"] = msg
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, fieldErrs)
	}

	ctx := c.Request().Context()

	byName, nameErr := h.Users.GetByUsername(ctx, req.Username)
	nameTaken := nameErr == nil
	if nameErr != nil && !errors.Is(nameErr, repository.ErrUserNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	byEmail, emailErr := h.Users.GetByEmail(ctx, req.Email)
	emailTaken := emailErr == nil
	if emailErr != nil && !errors.Is(emailErr, repository.ErrUserNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var u model.User
	switch {
	case nameTaken && emailTaken && byName.ID == byEmail.ID:
		// The exact pair already registered: treat as a re-request for the
		// confirmation code rather than a conflict.
		u = byName
	case nameTaken || emailTaken:
		conflict := echo.Map{}
		if nameTaken {
			conflict["username"] = "user with this username already exists"
		}
		if emailTaken {
			conflict["email"] = "user with this email already exists"
		}
		return c.JSON(http.StatusBadRequest, conflict)
	default:
		u = model.User{Username: req.Username, Email: req.Email, Role: model.RoleUser}
		if err := h.Users.Create(ctx, &u); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
		}
	}

	// Synchronous: the notifier has queued the mail by the time we answer.
	h.Bus.PublishUserRegistered(ctx, event.UserRegistered{User: u})

	return c.JSON(http.StatusOK, echo.Map{
		"username": u.Username,
		"email":    u.Email,
	})
}

// Token exchanges a username plus its signed confirmation code for a
// bearer access token.
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"username": "required field"})
	}
	if req.ConfirmationCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"confirmation_code": "required field"})
	}

	u, err := h.Users.GetByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	payload, err := h.Signer.Unsign(req.ConfirmationCode)
	if err != nil || payload != req.Username {
		return c.JSON(http.StatusBadRequest,
			echo.Map{"confirmation_code": "invalid confirmation code"})
	}

	token, err := h.Issuer.IssueAccessToken(u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
