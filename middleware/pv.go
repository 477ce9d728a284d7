package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/miniblog/store"
	"github.com/cppla/miniblog/utils"
)

// PostDetailRoute is the route whose successful hits count as post views.
const PostDetailRoute = "/api/v1/posts/:slug"

// PageViewRecorder counts successful post detail reads per day and slug.
// Cached responses never load the post, so the slug from the path is the key.
func PageViewRecorder(views store.PageViewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet || c.FullPath() != PostDetailRoute {
			return
		}
		if c.Writer.Status() != http.StatusOK {
			return
		}
		slug := c.Param("slug")
		if err := views.Record(c.Request.Context(), slug, time.Now()); err != nil {
			utils.Sugar.Warnf("record page view slug=%s err=%v", slug, err)
		}
	}
}
