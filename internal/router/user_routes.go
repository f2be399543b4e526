package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/auth"
	"github.com/iliyamo/title-review-api/internal/middleware"
)

// registerUsers mounts user administration and the self-profile routes.
// The static /users/me pair must not fall through to the :username
// handlers, which sit behind the user management policy; echo matches
// static segments first.
func registerUsers(v1 *echo.Group, d Deps) {
	admin := middleware.Require(auth.CanManageUsers)

	v1.GET("/users/me", d.Users.Me)
	v1.PATCH("/users/me", d.Users.PatchMe)

	v1.GET("/users", d.Users.List, admin)
	v1.POST("/users", d.Users.Create, admin)
	v1.GET("/users/:username", d.Users.Get, admin)
	v1.PATCH("/users/:username", d.Users.Patch, admin)
	v1.DELETE("/users/:username", d.Users.Delete, admin)
}
