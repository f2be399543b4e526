// Package handler exposes the HTTP handlers of the API.  Handlers bind
// request DTOs, consult the permission policy, call into repositories and
// translate sentinel errors to HTTP statuses.  Side effects that outlive
// the request (rating recompute, confirmation mail) go through the event
// bus, never directly from here.
package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/model"
)

// currentUser returns the identity attached by the authentication
// middleware, or nil for an anonymous request.
func currentUser(c echo.Context) *model.User {
	if u, ok := c.Get("user").(model.User); ok {
		return &u
	}
	return nil
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
