// Package router wires the HTTP handlers to their paths.  Everything lives
// under /v1.  Authentication runs on the whole group and lets anonymous
// requests through; per-route guards decide what anonymous or non-admin
// callers may do.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/handler"
)

// Deps collects the handlers and middleware the route tree needs.
type Deps struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Categories *handler.CategoryHandler
	Genres     *handler.GenreHandler
	Titles     *handler.TitleHandler
	Reviews    *handler.ReviewHandler
	Comments   *handler.CommentHandler

	// Authenticate resolves a Bearer token to a user and must always be
	// present.  RateLimit and Cache may be pass-throughs.
	Authenticate echo.MiddlewareFunc
	RateLimit    echo.MiddlewareFunc
	Cache        echo.MiddlewareFunc
}

// Register mounts the full route tree on e.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Signup and token exchange work without a session.
	authGroup := e.Group("/v1/auth")
	if d.RateLimit != nil {
		authGroup.Use(d.RateLimit)
	}
	authGroup.POST("/signup", d.Auth.Signup)
	authGroup.POST("/token", d.Auth.Token)

	v1 := e.Group("/v1")
	v1.Use(d.Authenticate)
	if d.RateLimit != nil {
		v1.Use(d.RateLimit)
	}

	registerCatalog(v1, d)
	registerContent(v1, d)
	registerUsers(v1, d)
}
