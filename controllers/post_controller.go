package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/miniblog/config"
	"github.com/cppla/miniblog/models"
	"github.com/cppla/miniblog/store"
	"github.com/cppla/miniblog/utils"
)

// PostController serves the public post pages.
type PostController struct {
	posts        store.PostStore
	siteTitle    string
	relatedLimit int
}

// NewPostController creates a new PostController instance.
func NewPostController(posts store.PostStore, cfg config.AppConfig) *PostController {
	return &PostController{
		posts:        posts,
		siteTitle:    cfg.SiteTitle,
		relatedLimit: cfg.RelatedPostsLimit,
	}
}

// ListPosts returns published posts, optionally narrowed by tag and search,
// together with every published tag.
func (p *PostController) ListPosts(ctx *gin.Context) {
	tag := ctx.Query("tag")
	search := ctx.Query("search")

	// Searches bypass the cache
	cacheKey := utils.PostListCacheKey(tag)
	if search == "" {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	rctx := ctx.Request.Context()
	posts, err := p.posts.List(rctx, models.ListFilter{Tag: tag, Search: search})
	if err != nil {
		utils.Sugar.Errorw("list posts failed", "tag", tag, "search", search, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}
	tags, err := p.posts.ListTags(rctx)
	if err != nil {
		utils.Sugar.Errorw("list tags failed", "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list tags")
		return
	}

	payload := gin.H{
		"items":          posts,
		"tags":           tags,
		"current_tag":    tag,
		"current_search": search,
	}
	if search == "" {
		utils.CacheSetJSON(cacheKey, utils.SuccessEnvelope(payload), 0)
	}
	utils.Success(ctx, payload)
}

// GetPost returns a published post by slug with related posts and page meta.
func (p *PostController) GetPost(ctx *gin.Context) {
	slug := ctx.Param("slug")
	cacheKey := utils.PostDetailCacheKey(slug)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	rctx := ctx.Request.Context()
	post, err := p.posts.GetBySlug(rctx, slug)
	if errors.Is(err, store.ErrNotFound) || (err == nil && post.Status != models.StatusPublished) {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}
	if err != nil {
		utils.Sugar.Errorw("load post failed", "slug", slug, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}

	related, err := relatedPosts(rctx, p.posts, post, p.relatedLimit)
	if err != nil {
		utils.Sugar.Warnw("load related posts failed", "slug", slug, "err", err)
		related = []models.Post{}
	}

	payload := gin.H{
		"post":    post,
		"related": related,
		"meta":    postMeta(post, p.siteTitle),
	}
	utils.CacheSetJSON(cacheKey, utils.SuccessEnvelope(payload), 0)
	utils.Success(ctx, payload)
}

// ListTags returns every tag used by a published post.
func (p *PostController) ListTags(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(utils.TagsCacheKey()); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	tags, err := p.posts.ListTags(ctx.Request.Context())
	if err != nil {
		utils.Sugar.Errorw("list tags failed", "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list tags")
		return
	}
	payload := gin.H{"tags": tags}
	utils.CacheSetJSON(utils.TagsCacheKey(), utils.SuccessEnvelope(payload), 0)
	utils.Success(ctx, payload)
}

// ListTagPosts returns the published posts carrying one tag.
func (p *PostController) ListTagPosts(ctx *gin.Context) {
	tag := ctx.Param("tag")
	posts, err := p.posts.List(ctx.Request.Context(), models.ListFilter{Tag: tag})
	if err != nil {
		utils.Sugar.Errorw("list tag posts failed", "tag", tag, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}
	utils.Success(ctx, gin.H{
		"tag":   tag,
		"items": posts,
	})
}

// relatedPosts lists published posts sharing the first tag of post,
// excluding post itself. Without tags every published post qualifies.
func relatedPosts(ctx context.Context, posts store.PostStore, post models.Post, limit int) ([]models.Post, error) {
	filter := models.ListFilter{}
	if len(post.Tags) > 0 {
		filter.Tag = post.Tags[0]
	}
	candidates, err := posts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		limit = 0
	}
	related := make([]models.Post, 0, limit)
	for _, c := range candidates {
		if len(related) >= limit {
			break
		}
		if c.ID != post.ID {
			related = append(related, c)
		}
	}
	return related, nil
}

// metaDescriptionRunes caps the meta description length.
const metaDescriptionRunes = 160

func postMeta(post models.Post, siteTitle string) gin.H {
	title := post.Title
	if siteTitle != "" {
		title += " | " + siteTitle
	}
	description := utils.Excerpt(post.Summary, metaDescriptionRunes)
	meta := gin.H{
		"title":          title,
		"description":    description,
		"og_title":       post.Title,
		"og_description": description,
		"og_type":        "article",
	}
	if post.HeroImage != "" {
		meta["og_image"] = post.HeroImage
	}
	return meta
}
