package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/miniblog/config"
	"github.com/cppla/miniblog/models"
	"github.com/cppla/miniblog/routes"
	"github.com/cppla/miniblog/store"
	"github.com/cppla/miniblog/utils"
)

func main() {
	hashToken := flag.String("hash-admin-token", "", "print the bcrypt hash of the given admin token and exit")
	flag.Parse()
	if *hashToken != "" {
		hash, err := utils.HashAdminToken(*hashToken)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash admin token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	if cfg.UsingDefaultAdminToken() {
		utils.Sugar.Warn("ADMIN_TOKEN is not set, admin area accepts the built-in default token")
	}

	posts := store.NewContentStore()
	if cfg.SeedPosts {
		if err := posts.Seed(store.DefaultPosts()...); err != nil {
			utils.Sugar.Fatalf("seed posts: %v", err)
		}
	}

	var views store.PageViewStore = store.NewMemoryPageViewStore()
	db, err := config.InitDatabase(cfg, zap.NewStdLog(utils.Logger.Named("gorm")), &models.PostView{})
	if err != nil {
		utils.Sugar.Fatalf("init database: %v", err)
	}
	if db != nil {
		views = store.NewGormPageViewStore(db)
	}

	r := routes.SetupRouter(cfg, posts, views)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	shutdown := time.Duration(cfg.ShutdownTimeoutSec) * time.Second
	if err := utils.GraceServer(":"+cfg.AppPort, r, shutdown); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
