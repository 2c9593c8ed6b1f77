package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/jbf-storefront/internal/api"
	"github.com/dom/jbf-storefront/internal/config"
	"github.com/dom/jbf-storefront/internal/denylist"
	"github.com/dom/jbf-storefront/internal/limiter"
	"github.com/dom/jbf-storefront/internal/mailer"
	"github.com/dom/jbf-storefront/internal/repository/postgres"
	"github.com/dom/jbf-storefront/internal/service"
	"github.com/dom/jbf-storefront/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL, postgres.ParseLogLevel(cfg.DBLogLevel))
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	repos := postgres.NewRepositories(db)

	// Token denylist
	var revoked denylist.Store
	if cfg.RedisURL != "" {
		client, err := denylist.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		revoked = denylist.NewRedis(client)
		logger.Info("using redis token denylist")
	} else {
		mem := denylist.NewMemory()
		go mem.Run(ctx, 10*time.Minute)
		revoked = mem
	}

	// Login throttling
	throttle := limiter.NewMemory(limiter.Config{
		IPRate:      cfg.LoginRatePerSecond,
		IPBurst:     cfg.LoginBurst,
		MaxFailures: cfg.LoginMaxFailures,
		Lockout:     cfg.LoginLockout,
	}, logger.Named("limiter"))
	go throttle.Run(ctx, 10*time.Minute)

	// Mail
	var transport mailer.Transport = mailer.Disabled{}
	if cfg.MailEnabled() {
		smtp, err := mailer.NewSMTP(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
			Timeout:  cfg.MailTimeout,
		})
		if err != nil {
			logger.Fatal("invalid mail configuration", zap.Error(err))
		}
		transport = smtp
	} else {
		logger.Warn("SMTP_USER not set, contact notifications are disabled")
	}
	notifier := mailer.NewContactNotifier(transport, cfg.AdminEmail, cfg.SiteName)

	// Admin live feed
	hub := websocket.NewHub(logger.Named("ws"))
	go hub.Run()

	services := service.NewServices(repos, cfg, service.Dependencies{
		Denylist:  revoked,
		Limiter:   throttle,
		Notifier:  notifier,
		Publisher: hub,
		Logger:    logger,
	})

	router := api.NewRouter(services, api.Deps{
		Hub:          hub,
		MailPinger:   transport,
		MailNotifier: notifier,
		Logger:       logger,
	}, cfg)

	// Contact submissions wait for mail delivery, so writes get extra headroom.
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.MailTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
