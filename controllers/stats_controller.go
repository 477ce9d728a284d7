package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/miniblog/models"
	"github.com/cppla/miniblog/store"
	"github.com/cppla/miniblog/utils"
)

// StatsController provides blog statistics such as post counts and views.
type StatsController struct {
	posts store.PostStore
	views store.PageViewStore
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(posts store.PostStore, views store.PageViewStore) *StatsController {
	return &StatsController{posts: posts, views: views}
}

// GetStats returns aggregate statistics for the blog.
func (s *StatsController) GetStats(ctx *gin.Context) {
	rctx := ctx.Request.Context()
	all, err := s.posts.List(rctx, models.ListFilter{Status: models.StatusAll})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}
	var published, drafts int
	for _, p := range all {
		if p.Status == models.StatusPublished {
			published++
		} else {
			drafts++
		}
	}

	tags, err := s.posts.ListTags(rctx)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list tags")
		return
	}

	// Fall back to 0 instead of failing the whole endpoint
	viewsToday, err := s.views.CountOn(rctx, time.Now())
	if err != nil {
		utils.Sugar.Warnw("count views failed", "err", err)
		viewsToday = 0
	}

	utils.Success(ctx, gin.H{
		"post_count":  published,
		"draft_count": drafts,
		"tag_count":   len(tags),
		"views_today": viewsToday,
	})
}

// GetPostStats returns the view count of one published post.
func (s *StatsController) GetPostStats(ctx *gin.Context) {
	slug := ctx.Param("slug")
	rctx := ctx.Request.Context()
	post, err := s.posts.GetBySlug(rctx, slug)
	if errors.Is(err, store.ErrNotFound) || (err == nil && post.Status != models.StatusPublished) {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}

	views, err := s.views.Count(rctx, slug)
	if err != nil {
		utils.Sugar.Warnw("count post views failed", "slug", slug, "err", err)
		views = 0
	}
	utils.Success(ctx, gin.H{
		"slug":  slug,
		"views": views,
	})
}
