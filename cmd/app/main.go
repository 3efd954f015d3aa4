package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"athlete-registry-backend/internal/common/config"
	"athlete-registry-backend/internal/common/logger"
	"athlete-registry-backend/internal/common/middleware"
	"athlete-registry-backend/internal/common/password"
	"athlete-registry-backend/internal/common/upload"
	athletehttp "athlete-registry-backend/internal/features/athlete/delivery/http"
	athletepg "athlete-registry-backend/internal/features/athlete/repository/postgres"
	athleteservice "athlete-registry-backend/internal/features/athlete/service"
	registrationhttp "athlete-registry-backend/internal/features/registration/delivery/http"
	registrationredis "athlete-registry-backend/internal/features/registration/repository/redis"
	registrationservice "athlete-registry-backend/internal/features/registration/service"
	userhttp "athlete-registry-backend/internal/features/user/delivery/http"
	userpg "athlete-registry-backend/internal/features/user/repository/postgres"
	userservice "athlete-registry-backend/internal/features/user/service"
	"athlete-registry-backend/internal/platform/mail"
	"athlete-registry-backend/internal/platform/postgres"
	redisplatform "athlete-registry-backend/internal/platform/redis"
	"athlete-registry-backend/internal/platform/token"
)

// @title           Athlete Registry API
// @version         1.0
// @description     REST backend for the voter/athlete registration portal. Public registration is OTP-gated; protected endpoints require a bearer token.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer access token

// @tag.name users
// @tag.description User management and authentication

// @tag.name registration
// @tag.description Two-phase OTP-gated registration

// @tag.name athletes
// @tag.description Athlete management

func main() {
	cfg := config.Load()

	logger.Init("athlete-registry-backend", cfg.Debug)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := postgres.Open(ctx, cfg.Postgres.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to postgres")
	}
	defer pg.Close()

	if err := postgres.EnsureSchema(ctx, pg); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply schema")
	}

	rdb, err := redisplatform.Open(ctx, redisplatform.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer rdb.Close()

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.Upload.Dir).Msg("Failed to create upload dir")
	}

	hasher := password.Bcrypt{Cost: cfg.Auth.BcryptCost}
	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	mailer := mail.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	uploads := upload.NewSaver(cfg.Upload.Dir, cfg.Upload.MaxSizeMB)

	userRepo := userpg.NewPostgresRepository(pg)
	pendingRepo := registrationredis.NewRepository(rdb.Client)
	athleteRepo := athletepg.NewPostgresRepository(pg)

	userSvc := userservice.NewUserService(userRepo, hasher, tokens, mailer, cfg)
	registrationSvc := registrationservice.NewRegistrationService(pendingRepo, userRepo, hasher, mailer, cfg)
	athleteSvc := athleteservice.NewAthleteService(athleteRepo, cfg)

	protect := middleware.Protect(userRepo, tokens)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.Origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	userhttp.NewUserHandler(userSvc, uploads, protect).RegisterRoutes(api.Group("/users"))
	registrationhttp.NewRegistrationHandler(registrationSvc, uploads).RegisterRoutes(api.Group("/users"))
	athletehttp.NewAthleteHandler(athleteSvc, uploads, protect).RegisterRoutes(api.Group("/athletes"))
	api.Static("/uploads", cfg.Upload.Dir)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown")
	}
	logger.Info().Msg("Server stopped")
}
