package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/general_store/internal/events"
	"github.com/Skotchmaster/general_store/internal/httpserver"
	"github.com/Skotchmaster/general_store/internal/migrate"
	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/internal/search"
	"github.com/Skotchmaster/general_store/internal/service"
	"github.com/Skotchmaster/general_store/pkg/config"
	"github.com/Skotchmaster/general_store/pkg/cookies"
	"github.com/Skotchmaster/general_store/pkg/db"
	"github.com/Skotchmaster/general_store/pkg/logging"
	"github.com/Skotchmaster/general_store/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/general_store/pkg/middleware/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)
	slog.SetDefault(log)

	if err := cfg.RequireServer(); err != nil {
		log.Error("config_invalid", "error", err)
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sqlDB, err := migrate.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	applied, err := migrate.Up(initCtx, sqlDB, log)
	_ = sqlDB.Close()
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(applied) > 0 {
		log.Info("migrations_applied", "versions", applied)
	}

	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	r := repo.New(gdb)

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info("kafka_enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	var idx search.Indexer
	if len(cfg.ElasticURLs) > 0 {
		es, err := search.NewClient(initCtx, search.Config{
			Addresses: cfg.ElasticURLs,
			Username:  cfg.ElasticUser,
			Password:  cfg.ElasticPassword,
		})
		if err != nil {
			log.Warn("search_disabled", "reason", "elasticsearch unreachable", "error", err)
		} else {
			idx = search.NewElastic(es, cfg.ElasticIndex)
		}
	}

	authSvc := service.NewAuthService(r, pub, cfg.SessionTTL)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(log),
		middleware.Secure(),
	)
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{echo.HeaderContentType, "X-CSRF-Token"},
		}))
	}
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			SessionCookie:  cookies.SessionCookie,
			Secure:         cfg.CookieSecure,
			AllowedOrigins: cfg.CORSOrigins,
			SkipPrefixes:   []string{"/health/"},
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		DB:             gdb,
		CookieSecure:   cfg.CookieSecure,
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc, CookieSecure: cfg.CookieSecure},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: service.NewCatalogService(r, idx, pub)},
		OrderHandler:   &httpserver.OrderHTTP{Svc: service.NewOrderService(r, pub, cfg.TrackingSecret)},
		AccountHandler: &httpserver.AccountHTTP{
			Cart:    service.NewCartService(r),
			Loyalty: service.NewLoyaltyService(r),
		},
		OfferHandler: &httpserver.OfferHTTP{Svc: service.NewOfferService(r)},
		InboxHandler: &httpserver.InboxHTTP{
			Notifications: service.NewNotificationService(r),
			Messages:      service.NewMessageService(r, pub),
			Stats:         service.NewStatsService(r),
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case sig := <-stop:
		log.Info("shutting_down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}

	if err := pub.Close(); err != nil {
		log.Error("kafka_close_error", "error", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("db_close_error", "error", err)
		}
	}

	log.Info("shutdown_complete")
	return nil
}
