package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/miniblog/config"
	"github.com/cppla/miniblog/middleware"
	"github.com/cppla/miniblog/models"
	"github.com/cppla/miniblog/store"
	"github.com/cppla/miniblog/utils"
)

// AdminController manages posts on behalf of an authenticated admin.
type AdminController struct {
	posts store.PostStore
	cfg   config.AppConfig
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(posts store.PostStore, cfg config.AppConfig) *AdminController {
	return &AdminController{posts: posts, cfg: cfg}
}

// postForm is the admin editor payload. Tags arrive as one comma separated string.
type postForm struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	Tags      string `json:"tags"`
	HeroImage string `json:"hero_image"`
	Status    string `json:"status"`
	// Format is "html" (default) or "markdown".
	Format string `json:"format"`
}

// validate returns one message per rejected field.
func (f postForm) validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "title is required"
	}
	if strings.TrimSpace(f.Slug) == "" {
		errs["slug"] = "slug is required"
	}
	if strings.TrimSpace(f.Summary) == "" {
		errs["summary"] = "summary is required"
	}
	if strings.TrimSpace(f.Content) == "" {
		errs["content"] = "content is required"
	}
	if f.Status != "" {
		if s, ok := models.ParsePostStatus(f.Status); !ok || !s.Valid() {
			errs["status"] = "status must be published or draft"
		}
	}
	switch strings.ToLower(f.Format) {
	case "", "html", "markdown":
	default:
		errs["format"] = "format must be html or markdown"
	}
	return errs
}

// fields converts a validated form into store input.
func (f postForm) fields() (models.PostFields, error) {
	status := models.StatusDraft
	if f.Status != "" {
		status, _ = models.ParsePostStatus(f.Status)
	}
	content := f.Content
	if strings.EqualFold(f.Format, "markdown") {
		html, err := utils.RenderMarkdown(content)
		if err != nil {
			return models.PostFields{}, err
		}
		content = html
	}
	return models.PostFields{
		Slug:      strings.TrimSpace(f.Slug),
		Title:     strings.TrimSpace(f.Title),
		Summary:   strings.TrimSpace(f.Summary),
		Content:   content,
		Tags:      utils.SplitTags(f.Tags),
		HeroImage: strings.TrimSpace(f.HeroImage),
		Status:    status,
	}, nil
}

func (a *AdminController) invalidate() {
	utils.InvalidateByPrefix(utils.CachePrefix)
}

// slugTaken reports whether another post than exceptID already uses slug.
func (a *AdminController) slugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	existing, err := a.posts.GetBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != exceptID, nil
}

func validationFailed(ctx *gin.Context, errs map[string]string, values interface{}) {
	utils.Respond(ctx, http.StatusBadRequest, 40021, "validation failed", gin.H{
		"errors": errs,
		"values": values,
	})
}

// normalizePatch trims the text fields a patch names and reports the
// required ones it would blank.
func normalizePatch(patch *models.PostPatch) map[string]string {
	errs := map[string]string{}
	required := []struct {
		name  string
		value *string
	}{
		{"title", patch.Title},
		{"slug", patch.Slug},
		{"summary", patch.Summary},
		{"content", patch.Content},
	}
	for _, f := range required {
		if f.value == nil {
			continue
		}
		if strings.TrimSpace(*f.value) == "" {
			errs[f.name] = f.name + " is required"
		}
	}
	for _, v := range []*string{patch.Title, patch.Slug, patch.Summary, patch.HeroImage} {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
	return errs
}

// Login exchanges the shared secret for a bearer session token.
func (a *AdminController) Login(ctx *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if !utils.CheckAdminToken(req.Token, a.cfg.AdminToken, a.cfg.AdminTokenHash) {
		utils.Sugar.Warnw("admin login rejected", "ip", ctx.ClientIP())
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid admin token")
		return
	}

	ttl := time.Duration(a.cfg.AdminSessionMinutes) * time.Minute
	signed, claims, err := utils.GenerateAdminToken(a.cfg.JWTSecret, ttl)
	if err != nil {
		utils.Sugar.Errorw("issue admin token failed", "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to issue token")
		return
	}
	utils.Sugar.Infow("admin login", "ip", ctx.ClientIP(), "jti", claims.ID)
	utils.Success(ctx, gin.H{
		"access_token": signed,
		"token_type":   "Bearer",
		"expires_at":   claims.ExpiresAt.Time,
	})
}

// Logout revokes the bearer session used for this request.
func (a *AdminController) Logout(ctx *gin.Context) {
	claims, ok := middleware.AdminClaims(ctx)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no session to revoke")
		return
	}
	utils.RevokeToken(claims.ID, claims.ExpiresAt.Time)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// ListPosts returns posts of every status unless ?status= narrows it.
func (a *AdminController) ListPosts(ctx *gin.Context) {
	status := models.StatusAll
	if raw := ctx.Query("status"); raw != "" {
		s, ok := models.ParsePostStatus(raw)
		if !ok {
			utils.Error(ctx, http.StatusBadRequest, 40023, "invalid status")
			return
		}
		status = s
	}
	posts, err := a.posts.List(ctx.Request.Context(), models.ListFilter{
		Status: status,
		Tag:    ctx.Query("tag"),
		Search: ctx.Query("search"),
	})
	if err != nil {
		utils.Sugar.Errorw("admin list posts failed", "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}
	utils.Success(ctx, gin.H{"items": posts, "status": status})
}

// GetPost returns any post by id.
func (a *AdminController) GetPost(ctx *gin.Context) {
	a.respondPost(ctx, func(rctx context.Context) (models.Post, error) {
		return a.posts.GetByID(rctx, ctx.Param("id"))
	})
}

// GetPostBySlug loads any post by slug for the edit form.
func (a *AdminController) GetPostBySlug(ctx *gin.Context) {
	a.respondPost(ctx, func(rctx context.Context) (models.Post, error) {
		return a.posts.GetBySlug(rctx, ctx.Param("slug"))
	})
}

func (a *AdminController) respondPost(ctx *gin.Context, load func(context.Context) (models.Post, error)) {
	post, err := load(ctx.Request.Context())
	if errors.Is(err, store.ErrNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
		return
	}
	if err != nil {
		utils.Sugar.Errorw("admin load post failed", "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}
	utils.Success(ctx, gin.H{
		"post":       post,
		"tags_input": utils.JoinTags(post.Tags),
	})
}

// CreatePost validates the editor form and stores a new post.
func (a *AdminController) CreatePost(ctx *gin.Context) {
	var form postForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if errs := form.validate(); len(errs) > 0 {
		validationFailed(ctx, errs, form)
		return
	}
	fields, err := form.fields()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "failed to render markdown")
		return
	}

	rctx := ctx.Request.Context()
	// Best effort, as in applyPatch.
	taken, err := a.slugTaken(rctx, fields.Slug, "")
	if err != nil {
		utils.Sugar.Errorw("check slug failed", "slug", fields.Slug, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to check slug")
		return
	}
	if taken {
		utils.Error(ctx, http.StatusConflict, 40901, "slug already in use")
		return
	}

	post, err := a.posts.Create(rctx, fields)
	if err != nil {
		utils.Sugar.Errorw("create post failed", "slug", fields.Slug, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}
	a.invalidate()
	utils.Sugar.Infow("post created", "id", post.ID, "slug", post.Slug, "status", post.Status)
	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"post": post})
}

// UpdatePost replaces every editable field from the editor form.
func (a *AdminController) UpdatePost(ctx *gin.Context) {
	id := ctx.Param("id")
	var form postForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if errs := form.validate(); len(errs) > 0 {
		validationFailed(ctx, errs, form)
		return
	}
	fields, err := form.fields()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "failed to render markdown")
		return
	}

	a.applyPatch(ctx, id, models.PostPatch{
		Slug:      &fields.Slug,
		Title:     &fields.Title,
		Summary:   &fields.Summary,
		Content:   &fields.Content,
		Tags:      &fields.Tags,
		HeroImage: &fields.HeroImage,
		Status:    &fields.Status,
	})
}

// PatchPost changes only the fields present in the body.
func (a *AdminController) PatchPost(ctx *gin.Context) {
	var patch models.PostPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if patch.Empty() {
		utils.Error(ctx, http.StatusBadRequest, 40024, "no fields to update")
		return
	}
	if patch.Status != nil && !patch.Status.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid status")
		return
	}
	if errs := normalizePatch(&patch); len(errs) > 0 {
		validationFailed(ctx, errs, patch)
		return
	}
	a.applyPatch(ctx, ctx.Param("id"), patch)
}

func (a *AdminController) applyPatch(ctx *gin.Context, id string, patch models.PostPatch) {
	rctx := ctx.Request.Context()
	// Best effort: the check and the write are separate store calls, so racing writers can still share a slug.
	if patch.Slug != nil {
		taken, err := a.slugTaken(rctx, *patch.Slug, id)
		if err != nil {
			utils.Sugar.Errorw("check slug failed", "slug", *patch.Slug, "err", err)
			utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to check slug")
			return
		}
		if taken {
			utils.Error(ctx, http.StatusConflict, 40901, "slug already in use")
			return
		}
	}

	post, err := a.posts.Update(rctx, id, patch)
	if errors.Is(err, store.ErrNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
		return
	}
	if err != nil {
		utils.Sugar.Errorw("update post failed", "id", id, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		return
	}
	a.invalidate()
	utils.Sugar.Infow("post updated", "id", post.ID, "slug", post.Slug)
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes a post by id.
func (a *AdminController) DeletePost(ctx *gin.Context) {
	id := ctx.Param("id")
	deleted, err := a.posts.Delete(ctx.Request.Context(), id)
	if err != nil {
		utils.Sugar.Errorw("delete post failed", "id", id, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete post")
		return
	}
	if !deleted {
		utils.Respond(ctx, http.StatusNotFound, 40404, "post not found", gin.H{"deleted": false})
		return
	}
	a.invalidate()
	utils.Sugar.Infow("post deleted", "id", id)
	utils.Success(ctx, gin.H{"deleted": true})
}
