package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/totsandteens/clinic-bookings/internal/api/router"
	"github.com/totsandteens/clinic-bookings/internal/appointments"
	appconfig "github.com/totsandteens/clinic-bookings/internal/config"
	"github.com/totsandteens/clinic-bookings/internal/http/handlers"
	"github.com/totsandteens/clinic-bookings/internal/notify"
	"github.com/totsandteens/clinic-bookings/internal/observability/metrics"
	"github.com/totsandteens/clinic-bookings/pkg/logging"
)

func main() {
	// Load .env in development; a missing file is fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic bookings API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"email_provider", cfg.EmailProvider,
	)

	ctx := context.Background()
	deliveryMetrics := metrics.NewDeliveryMetrics(nil)

	// Appointment storage is optional; without DATABASE_URL the service
	// keeps bookings in memory for the lifetime of the process.
	var repo appointments.Repository = appointments.NewInMemoryRepository()
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = appointments.NewPostgresRepository(pool)
		logger.Info("appointment storage: postgres")
	} else {
		logger.Info("appointment storage: in-memory")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = redisClient.Close() }()
	}
	guard := appointments.NewDuplicateGuard(redisClient, cfg.DedupeWindow, logger.Component("dedupe"))

	notifyLog := logger.Component("notify")

	var primary notify.Channel
	switch cfg.EmailProvider {
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		if ch := notify.NewSESChannel(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, notifyLog); ch != nil {
			primary = ch
		}
	default:
		if ch := notify.NewSendGridChannel(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, notifyLog); ch != nil {
			primary = ch
		}
	}
	if primary == nil {
		logger.Warn("no primary email channel configured; bookings will fail delivery")
	}

	var secondary notify.Channel
	smtpCh := notify.NewSMTPChannel(notify.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
		FromName:  cfg.SMTPFromName,
	}, notifyLog)
	if smtpCh.Configured() {
		secondary = smtpCh
		logger.Info("secondary SMTP relay configured", "host", cfg.SMTPHost)
	}

	retry := notify.NewRetrySender(notify.RetryPolicy{
		MaxAttempts: cfg.DeliveryMaxAttempts,
		BaseDelay:   cfg.DeliveryBaseDelay,
		MaxDelay:    cfg.DeliveryMaxDelay,
	}, deliveryMetrics, notifyLog)
	deliverer := notify.NewDeliverer(primary, secondary, retry, deliveryMetrics, notifyLog)

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		logger.Warn("invalid clinic timezone, using UTC", "tz", cfg.ClinicTimezone, "error", err)
		loc = time.UTC
	}
	content := notify.NewContentBuilder(notify.ContentConfig{
		ClinicName:  cfg.ClinicName,
		ClinicEmail: cfg.ClinicEmail,
		Location:    loc,
	})

	auditLog := appointments.NewAuditLog(cfg.BookingLogPath, logger.Component("audit"))

	bookingHandler := handlers.NewBookingHandler(handlers.BookingHandlerConfig{
		Repository:         repo,
		Deliverer:          deliverer,
		Content:            content,
		Audit:              auditLog,
		Guard:              guard,
		Metrics:            deliveryMetrics,
		Logger:             logger.Component("http"),
		Timeout:            cfg.DeliveryTimeout,
		ParentConfirmation: cfg.ParentConfirmation,
	})

	r := router.New(router.Config{
		Booking:     bookingHandler,
		Persistence: true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.DeliveryTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
