package main

import (
	"context"
	"log"
	"net/http"
	"time"

	_ "inkpress/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"inkpress/internal/auth"
	"inkpress/internal/cache"
	"inkpress/internal/config"
	"inkpress/internal/db"
	"inkpress/internal/handler"
	"inkpress/internal/model"
	"inkpress/internal/repository"
	"inkpress/internal/router"
	"inkpress/internal/service"
	"inkpress/internal/upload"
)

// @title Inkpress Blog API
// @version 1.0
// @description Blogging API with user registration, cookie-based JWT sessions, and post CRUD with cover uploads.
// @host localhost:4000
// @BasePath /
// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQL.DSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Post{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	uploads, err := upload.NewStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatalf("upload store: %v", err)
	}
	go uploads.Sweep(context.Background())

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)

	// Initialize auth components
	tokenTTL := time.Duration(cfg.Auth.TokenTTLMinute) * time.Minute
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, tokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	postService := service.NewPostService(postRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, tokenTTL)
	postHandler := handler.NewPostHandler(postService, uploads)

	// Register routes
	router.Register(e, cfg, tokenStore, authHandler, postHandler, uploads)

	if err := e.Start(cfg.HTTPAddr()); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
