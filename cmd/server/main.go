package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // keeps timezone lookups working in slim images

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/user/filmy/internal/config"
	"github.com/user/filmy/internal/handler"
	"github.com/user/filmy/internal/middleware"
	"github.com/user/filmy/internal/repository"
	"github.com/user/filmy/internal/router"
	"github.com/user/filmy/internal/service"
	"github.com/user/filmy/internal/store"
	"github.com/user/filmy/internal/tmdb"
	"github.com/user/filmy/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}

	cfg := config.Load()

	ratings, err := store.Open(cfg.RatingsFile)
	if err != nil {
		log.Fatalf("open ratings store: %v", err)
	}
	log.Printf("[Store] loaded %d ratings from %s", ratings.Count(), cfg.RatingsFile)

	// The mirror database is optional; without it the app runs purely
	// off the local CSV journal.
	var repos *repository.Repositories
	if cfg.DatabaseURL != "" {
		repos, err = repository.InitDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connect mirror database: %v", err)
		}
		defer repos.DB.Close()
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("[Redis] unavailable, response cache disabled: %v", err)
			rdb = nil
		}
	}

	utils.InitCache()

	catalog := tmdb.NewClient(cfg)
	h := handler.NewHandler(cfg, ratings, catalog, repos, rdb)

	if repos != nil && cfg.MirrorPullOnStart && ratings.Count() == 0 {
		// A fresh deployment restores its table from the mirror.
		mirror := service.NewMirrorService(ratings, repos.Mirror)
		if pulled, err := mirror.Pull(); err != nil {
			log.Printf("[Mirror] startup pull failed: %v", err)
		} else if pulled > 0 {
			log.Printf("[Mirror] restored %d ratings", pulled)
		}
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	sessionStore := cookie.NewStore([]byte(cfg.AppSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("filmy_session", sessionStore))
	r.Use(middleware.Logger())

	router.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server start failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("forced shutdown:", err)
	}
	log.Println("server exited")
}
