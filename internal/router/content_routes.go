package router

import "github.com/labstack/echo/v4"

// registerContent mounts reviews and their comments under titles.  Reads
// are public; the handlers themselves gate writes on the author/moderator
// policy, so no route-level guard is applied here.
func registerContent(v1 *echo.Group, d Deps) {
	v1.GET("/titles/:title_id/reviews", d.Reviews.List)
	v1.POST("/titles/:title_id/reviews", d.Reviews.Create)
	v1.GET("/titles/:title_id/reviews/:id", d.Reviews.Get)
	v1.PATCH("/titles/:title_id/reviews/:id", d.Reviews.Patch)
	v1.DELETE("/titles/:title_id/reviews/:id", d.Reviews.Delete)

	v1.GET("/titles/:title_id/reviews/:review_id/comments", d.Comments.List)
	v1.POST("/titles/:title_id/reviews/:review_id/comments", d.Comments.Create)
	v1.GET("/titles/:title_id/reviews/:review_id/comments/:id", d.Comments.Get)
	v1.PATCH("/titles/:title_id/reviews/:review_id/comments/:id", d.Comments.Patch)
	v1.DELETE("/titles/:title_id/reviews/:review_id/comments/:id", d.Comments.Delete)
}
