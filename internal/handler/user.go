package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// UserHandler implements admin user management and the self-profile
// endpoint.  The admin-only routes are gated by middleware; the /me pair is
// open to any authenticated caller and scoped to their own record.
type UserHandler struct {
	Users *repository.UserRepo
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: users}
}

type userResp struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

type userCreateReq struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

// userPatchReq distinguishes absent fields from empty ones so a partial
// update only touches what the client sent.
type userPatchReq struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

// List returns all users, optionally filtered by ?search= on username or
// email.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Create lets an admin provision a user with any role.  The new user still
// authenticates through the regular confirmation-code flow.
func (h *UserHandler) Create(c echo.Context) error {
	var req userCreateReq
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
	if req.Role == "" {
		req.Role = model.RoleUser
	}
	if !model.ValidRole(req.Role) {
		fieldErrs["role"] = "unknown role"
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, fieldErrs)
	}

	u := model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	}
	if err := h.Users.Create(c.Request().Context(), &u); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"username": "user with this username already exists"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"email": "user with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, toUserResp(u))
}

// Get returns one user by username.
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.Users.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Patch partially updates one user by username.  Admins may change any
// field including role.
func (h *UserHandler) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return h.applyPatch(c, u, true)
}

// Delete removes one user by username.
func (h *UserHandler) Delete(c echo.Context) error {
	err := h.Users.DeleteByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated caller's own record.
func (h *UserHandler) Me(c echo.Context) error {
	u := currentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, toUserResp(*u))
}

// PatchMe updates the caller's own profile.  The role field is not theirs
// to change: whatever value the body carries is overridden with the
// caller's current role.
func (h *UserHandler) PatchMe(c echo.Context) error {
	u := currentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return h.applyPatch(c, *u, false)
}

func (h *UserHandler) applyPatch(c echo.Context, u model.User, allowRole bool) error {
	var req userPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	fieldErrs := echo.Map{}
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if msg := validUsername(name); msg != "" {
			fieldErrs["username"] = msg
		} else {
			u.Username = name
		}
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if msg := validEmail(email); msg != "" {
			fieldErrs["email"] = msg
		} else {
			u.Email = email
		}
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.Role != nil && allowRole {
		if !model.ValidRole(*req.Role) {
			fieldErrs["role"] = "unknown role"
		} else {
			u.Role = *req.Role
		}
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, fieldErrs)
	}

	if err := h.Users.Update(c.Request().Context(), &u); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"username": "user with this username already exists"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"email": "user with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}
