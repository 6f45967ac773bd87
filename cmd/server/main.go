package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"hammerio/docs"
	"hammerio/internal/auth"
	"hammerio/internal/config"
	"hammerio/internal/db"
	"hammerio/internal/handler"
	"hammerio/internal/kv"
	"hammerio/internal/logger"
	"hammerio/internal/repository"
	"hammerio/internal/router"
	"hammerio/internal/service"
	"hammerio/internal/tools"
)

// @title hammer-io API
// @version 1.0
// @description Project collaboration API: users, projects, owners, contributors and linked provider accounts.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.Log.Level)

	gormDB, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("database init")
	}
	if cfg.Database.Reset {
		logger.Warn().Msg("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Fatal().Err(err).Msg("reset database")
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}

	var store *kv.Client
	if cfg.Redis.Addr != "" {
		store = kv.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := store.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis ping")
		}
		cancel()
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, keeping session tokens in process")
		store = kv.NewMemory()
	}
	defer store.Close()

	catalog, err := tools.Default()
	if err != nil {
		logger.Fatal().Err(err).Msg("load tools catalog")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)
	credentialRepo := repository.NewCredentialRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWT.Secret)
	tokenStore := auth.NewTokenStore(store)

	// Initialize services
	userService := service.NewUserService(userRepo)
	projectService := service.NewProjectService(projectRepo, userService)
	contributorService := service.NewContributorService(projectService)
	credentialService := service.NewCredentialService(credentialRepo)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, jwtService, tokenStore, router.Handlers{
		Auth:       handler.NewAuthHandler(authService, jwtService),
		User:       handler.NewUserHandler(userService, projectService, credentialService),
		Credential: handler.NewCredentialHandler(credentialService),
		Project:    handler.NewProjectHandler(projectService, contributorService, userService),
		Tools:      handler.NewToolsHandler(catalog),
	})

	if cfg.Server.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.Server.SwaggerHost
	}
	logger.Info().Str("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html").Msg("swagger documentation")

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info().Str("addr", addr).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	logger.Info().Msg("server stopped")
}
