package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"brainwaves/internal/catalog"
	"brainwaves/internal/config"
	"brainwaves/internal/db"
	"brainwaves/internal/email"
	apihttp "brainwaves/internal/http"
	"brainwaves/internal/repository"
	"brainwaves/internal/service"

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

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	answerRepo := repository.NewPgAnswerRepository(pool)
	groupRepo := repository.NewPgGroupRepository(pool)
	profilerTypeRepo := repository.NewPgProfilerTypeRepository(pool)
	configRepo := repository.NewPgConfigRepository(pool)

	cat := catalog.New(cfg.ProfilersDir, cfg.PracticeDir)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		tokenStore service.RefreshTokenStore
		scoreCache service.GroupScoreCache
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			scoreCache = service.NewRedisScoreCache(redisClient)
		}
		cancel()
	}
	if scoreCache == nil {
		scoreCache = service.NewMemoryScoreCache()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)

	userSvc := service.NewUserService(logger, userRepo, emailSender)
	profileSvc := service.NewProfileService(logger, profileRepo, answerRepo, groupRepo, profilerTypeRepo, cat, jwtSvc, scoreCache)
	groupSvc := service.NewGroupService(logger, groupRepo, profileRepo, answerRepo, profilerTypeRepo, cat, scoreCache)

	profileHandler := apihttp.NewProfileHandler(logger, profileSvc)
	groupHandler := apihttp.NewGroupHandler(logger, groupSvc)
	catalogHandler := apihttp.NewCatalogHandler(logger, profilerTypeRepo, cat)
	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	configHandler := apihttp.NewConfigHandler(logger, configRepo)

	router := apihttp.NewRouter(logger, jwtSvc, profileHandler, groupHandler, catalogHandler, userHandler, configHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
