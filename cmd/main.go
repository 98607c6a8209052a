package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"

	"mailgate"
	"mailgate/internal/api/captcha"
	"mailgate/internal/api/handler/endpoints"
	"mailgate/internal/api/handler/middleware"
	"mailgate/internal/api/mailer"
	"mailgate/internal/api/ratelimit"
	"mailgate/internal/api/service"
	"mailgate/internal/api/sites"
)

func main() {
	cfg := mailgate.InitConfig(".env")
	logger := mailgate.NewLogger()

	gin.SetMode(gin.ReleaseMode)
	if cfg.Mode == "dev" {
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(cfg.ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimitEnabled() {
		redisClient, err := mailgate.ConnectToRedis(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		limiter := ratelimit.NewLimiter(redisClient, cfg.RateLimitPerMinute, logger)
		router.Use(middleware.RateLimit(limiter))
		logger.Info().Int("perMinute", cfg.RateLimitPerMinute).Msg("Rate limiter enabled")
	}

	registry := sites.NewRegistry(cfg.SitesFile)
	verifier := captcha.NewClient(cfg.CaptchaVerifyURL, logger)
	transport := mailer.NewSMTPMailer(logger)
	mailService := service.NewMailService(cfg, logger, registry, verifier, transport)

	endpoints.MailHandler(router, cfg, logger, mailService)

	logger.Debug().Msgf("Starting mailgate on port %s", cfg.ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Msg(err.Error())
		panic(err)
	}
}
