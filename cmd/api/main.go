package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"scholarship-finder/internal/config"
	"scholarship-finder/internal/db"
	"scholarship-finder/internal/email"
	apihttp "scholarship-finder/internal/http"
	"scholarship-finder/internal/repository"
	"scholarship-finder/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.Ping(pingCtx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	cancel()
	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)
	scholarshipRepo := repository.NewPgScholarshipRepository(pool)
	universityRepo := repository.NewPgUniversityRepository(pool)
	referenceRepo := repository.NewPgReferenceRepository(pool)
	applicationRepo := repository.NewPgApplicationRepository(pool)
	documentRepo := repository.NewPgDocumentRepository(pool)
	taskRepo := repository.NewPgTaskRepository(pool)
	favoriteRepo := repository.NewPgFavoriteRepository(pool)
	analyticsRepo := repository.NewPgAnalyticsRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	// Sin Redis se usan las variantes en memoria (un solo proceso).
	sessionCache := service.NewMemorySessionCache()
	loginLimiter := service.NewMemoryLoginRateLimiter(cfg.LoginRateWindow(), cfg.LoginRateLimit)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory cache", zap.Error(err))
		} else {
			sessionCache = service.NewRedisSessionCache(redisClient)
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, cfg.LoginRateWindow(), cfg.LoginRateLimit)
		}
		cancel()
	}

	if cfg.DemoLoginEnabled {
		logger.Warn("demo login enabled", zap.String("email", cfg.DemoEmail))
	}
	authSvc := service.NewAuthService(logger, userRepo, sessionRepo, sessionCache, loginLimiter, emailSender, service.AuthOptions{
		LoginTTL:     cfg.LoginSessionTTL(),
		RefreshTTL:   cfg.RefreshSessionTTL(),
		CacheTTL:     cfg.SessionCacheTTL(),
		DemoEnabled:  cfg.DemoLoginEnabled,
		DemoEmail:    cfg.DemoEmail,
		DemoPassword: cfg.DemoPassword,
	})
	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL())
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured, bearer tokens disabled")
	}

	cookies := apihttp.CookieConfig{Secure: cfg.IsProduction()}
	gate := apihttp.NewGate(logger, authSvc, jwtSvc, apihttp.GateConfig{
		ProtectedPrefixes: cfg.ProtectedPrefixes,
		AdminPrefixes:     cfg.AdminPrefixes,
		Cookies:           cookies,
	})
	router := apihttp.NewRouter(logger, gate, apihttp.Handlers{
		Auth:         apihttp.NewAuthHandler(logger, authSvc, jwtSvc, cookies, cfg.LoginSessionTTL()),
		Scholarships: apihttp.NewScholarshipHandler(logger, service.NewScholarshipService(logger, scholarshipRepo)),
		Universities: apihttp.NewUniversityHandler(logger, service.NewUniversityService(logger, universityRepo)),
		Reference:    apihttp.NewReferenceHandler(logger, service.NewReferenceService(referenceRepo)),
		Applications: apihttp.NewApplicationHandler(logger, service.NewApplicationService(logger, applicationRepo, documentRepo, taskRepo, scholarshipRepo)),
		Favorites:    apihttp.NewFavoriteHandler(logger, service.NewFavoriteService(favoriteRepo, scholarshipRepo)),
		Analytics:    apihttp.NewAnalyticsHandler(logger, service.NewAnalyticsService(analyticsRepo)),
		Health:       apihttp.NewHealthHandler(logger, pool),
	})

	janitor := service.NewSessionJanitor(logger, sessionRepo, cfg.JanitorInterval())
	go janitor.Run(ctx)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
