// Package middleware contains reusable HTTP middleware: bearer-token
// authentication, the admin gate, Redis-backed rate limiting and response
// caching.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/auth"
	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// UserResolver resolves a token subject to a stored user.  *repository.UserRepo
// satisfies it; tests substitute an in-memory fake.
type UserResolver interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Authenticate validates the Authorization header and attaches the resolved
// user to the request context.  Per request it is a one-shot state machine:
//
//	no header            -> anonymous, request continues
//	malformed header     -> 401, no handler runs
//	bad/expired token    -> 401, no handler runs
//	unknown/inactive user-> 401, no handler runs
//	valid                -> identity stored under "user"/"user_id"/"role"
//
// An anonymous request is not an error here; whether anonymous access is
// acceptable is the permission policy's decision downstream.
func Authenticate(verifier *auth.TokenVerifier, users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}

			// Exactly two space-delimited parts with the literal,
			// case-sensitive "Bearer" scheme.
			parts := strings.Fields(header)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized,
					echo.Map{"error": "authorization header must contain two space-delimited values"})
			}

			userID, err := verifier.VerifyAccessToken(parts[1])
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			u, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
			}
			if !u.IsActive {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user is inactive"})
			}

			c.Set("user", u)
			c.Set("user_id", u.ID)
			c.Set("role", u.Role)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user attached by Authenticate, or
// nil for an anonymous request.
func CurrentUser(c echo.Context) *model.User {
	if u, ok := c.Get("user").(model.User); ok {
		return &u
	}
	return nil
}

// Require aborts the request unless the policy function grants it.  The
// policy receives nil for anonymous callers, who get 401; authenticated
// but denied callers get 403.
func Require(allow func(*model.User) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if !allow(u) {
				if u == nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
				}
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
