package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/auth"
	"github.com/iliyamo/title-review-api/internal/middleware"
)

// registerCatalog mounts categories, genres and titles.  Reads are public
// and cached; writes go through the catalog management policy.
func registerCatalog(v1 *echo.Group, d Deps) {
	admin := middleware.Require(auth.CanManageCatalog)
	cached := func(h echo.HandlerFunc) echo.HandlerFunc {
		if d.Cache == nil {
			return h
		}
		return d.Cache(h)
	}

	v1.GET("/categories", cached(d.Categories.List))
	v1.POST("/categories", d.Categories.Create, admin)
	v1.DELETE("/categories/:slug", d.Categories.Delete, admin)

	v1.GET("/genres", cached(d.Genres.List))
	v1.POST("/genres", d.Genres.Create, admin)
	v1.DELETE("/genres/:slug", d.Genres.Delete, admin)

	v1.GET("/titles", cached(d.Titles.List))
	v1.GET("/titles/:id", cached(d.Titles.Get))
	v1.POST("/titles", d.Titles.Create, admin)
	v1.PATCH("/titles/:id", d.Titles.Patch, admin)
	v1.DELETE("/titles/:id", d.Titles.Delete, admin)
}
