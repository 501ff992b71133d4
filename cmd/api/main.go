package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"users-auth/internal/config"
	"users-auth/internal/db"
	apihttp "users-auth/internal/http"
	"users-auth/internal/repository"
	"users-auth/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Warn("db ping failed", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)

	loginWindow := time.Duration(cfg.LoginRateWindowMinutes) * time.Minute
	loginThrottle := service.NewLoginThrottle(loginWindow, cfg.LoginRateMax)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory login throttle", zap.Error(err))
		} else {
			loginThrottle = service.NewRedisLoginThrottle(logger, redisClient, loginWindow, cfg.LoginRateMax)
		}
		cancel()
	}

	tokens := service.NewTokenCodec(cfg.SessionSecret)
	authSvc := service.NewAuthService(logger, userRepo, service.NewBcryptHasher(), tokens, loginThrottle)
	userSvc := service.NewUserService(logger, userRepo)

	cookies := apihttp.NewSessionCookies(cfg.SessionSecret, cfg.IsProduction(), service.TokenTTL)
	bearer := apihttp.NewBearerStrategy(authSvc, cookies)
	password := apihttp.NewPasswordStrategy(authSvc)

	appHandler := apihttp.NewAppHandler(cfg.AppName, cfg.AppVersion)
	authHandler := apihttp.NewAuthHandler(logger, authSvc, password, cookies)
	userHandler := apihttp.NewUserHandler(logger, userSvc)
	router := apihttp.NewRouter(logger, cfg.AllowedOrigins, appHandler, authHandler, userHandler, bearer)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.AppEnv))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
