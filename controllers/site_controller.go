package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/miniblog/config"
	"github.com/cppla/miniblog/utils"
)

// SiteController serves site-wide settings for page chrome and meta tags.
type SiteController struct {
	cfg config.AppConfig
}

func NewSiteController(cfg config.AppConfig) *SiteController { return &SiteController{cfg: cfg} }

// GetSite returns the configured site title and description.
func (s *SiteController) GetSite(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"title":       s.cfg.SiteTitle,
		"description": s.cfg.SiteDescription,
		"meta": gin.H{
			"title":       s.cfg.SiteTitle,
			"description": utils.PlainText(s.cfg.SiteDescription),
		},
	})
}
