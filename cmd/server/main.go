package main

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"todoapp/docs"
	"todoapp/internal/auth"
	"todoapp/internal/cache"
	"todoapp/internal/config"
	"todoapp/internal/db"
	"todoapp/internal/handler"
	"todoapp/internal/metrics"
	"todoapp/internal/repository"
	"todoapp/internal/router"
	"todoapp/internal/service"
)

// @title Todo API
// @version 1.0
// @description Per-user todo lists with argon2id credentials and bearer token authentication.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	ctx := context.Background()
	migrator, err := db.NewMigrator(gormDB)
	if err != nil {
		log.Fatalf("load migrations: %v", err)
	}

	// Revert every migration if RESET_DB is set
	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, reverting all migrations...")
		reverted, err := migrator.Down(ctx, 0)
		if err != nil {
			log.Fatalf("reset database: %v", err)
		}
		log.Printf("Reverted %d migrations", len(reverted))
	}

	if cfg.AutoMigrate {
		applied, err := migrator.Up(ctx)
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		for _, id := range applied {
			log.Printf("Applied migration %s", id)
		}
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if cacheClient == nil {
		log.Println("REDIS_ADDR not set, user lookups are not cached")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	todoRepo := repository.NewTodoRepository(gormDB)

	// Initialize auth components
	hasher := auth.NewPasswordHasher(auth.HashParams{
		Memory:      cfg.HashMemoryKiB,
		Iterations:  cfg.HashIterations,
		Parallelism: cfg.HashParallelism,
	})
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Initialize services
	userService := service.NewUserService(userRepo, cacheClient)
	authService := service.NewAuthService(userRepo, cacheClient, hasher, jwtService, cfg.AccessTokenTTL)
	todoService := service.NewTodoService(todoRepo)

	m := metrics.New()
	requireAuth := auth.Middleware(auth.NewResolver(jwtService, userService), m)

	e := echo.New()
	router.Register(
		e,
		m,
		requireAuth,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewTodoHandler(todoService),
	)

	host := docs.SwaggerInfo.Host
	log.Printf("Swagger documentation available at: http://%s/swagger/index.html", host)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
