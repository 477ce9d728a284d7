package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/miniblog/config"
	"github.com/cppla/miniblog/controllers"
	"github.com/cppla/miniblog/middleware"
	"github.com/cppla/miniblog/store"
	"github.com/cppla/miniblog/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, posts store.PostStore, views store.PageViewStore) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file when configured, else the app logger
	accessLog := utils.Logger
	if cfg.GinPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
		if err != nil {
			utils.Sugar.Warnf("gin log file %s unavailable, using app logger: %v", cfg.GinPath, err)
		} else {
			accessLog = gl
		}
	}
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, true))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		// Credentials cannot be combined with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.PageViewRecorder(views))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	postController := controllers.NewPostController(posts, cfg)
	adminController := controllers.NewAdminController(posts, cfg)
	statsController := controllers.NewStatsController(posts, views)
	siteController := controllers.NewSiteController(cfg)

	api := r.Group("/api/v1")
	api.GET("/site", siteController.GetSite)
	api.GET("/stats", statsController.GetStats)

	postsGroup := api.Group("/posts")
	postsGroup.GET("", postController.ListPosts)
	postsGroup.GET("/:slug", postController.GetPost)
	postsGroup.GET("/:slug/stats", statsController.GetPostStats)

	api.GET("/tags", postController.ListTags)
	api.GET("/tags/:tag", postController.ListTagPosts)

	admin := api.Group("/admin")
	admin.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))
	admin.POST("/login", adminController.Login)

	protected := admin.Group("")
	protected.Use(middleware.AdminRequired(cfg))
	protected.POST("/logout", adminController.Logout)
	protected.GET("/posts", adminController.ListPosts)
	protected.POST("/posts", adminController.CreatePost)
	protected.GET("/posts/:id", adminController.GetPost)
	protected.PUT("/posts/:id", adminController.UpdatePost)
	protected.PATCH("/posts/:id", adminController.PatchPost)
	protected.DELETE("/posts/:id", adminController.DeletePost)
	protected.GET("/slugs/:slug", adminController.GetPostBySlug)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			utils.Error(ctx, http.StatusNotFound, 40410, "static asset not found")
			return
		}
		// Page routes (/, /posts/:slug, /tags/:tag, /admin/...) fall back to the SPA entry
		ctx.File("./static/index.html")
	})

	return r
}
