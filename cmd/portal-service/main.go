package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/williamsps/maintenance-portal/internal/auth"
	"github.com/williamsps/maintenance-portal/internal/config"
	"github.com/williamsps/maintenance-portal/internal/db"
	"github.com/williamsps/maintenance-portal/internal/excel"
	httphandler "github.com/williamsps/maintenance-portal/internal/http"
	"github.com/williamsps/maintenance-portal/internal/http/middleware"
	"github.com/williamsps/maintenance-portal/internal/logger"
	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/pdf"
	"github.com/williamsps/maintenance-portal/internal/repository"
	"github.com/williamsps/maintenance-portal/internal/service"
	"github.com/williamsps/maintenance-portal/internal/validation"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	revocations, closeRevocations := newRevocations(cfg, log)
	defer closeRevocations()

	repos := repository.New(database)
	validate := validation.New()
	supplier := model.Supplier{Name: cfg.Supplier.Name, Phone: cfg.Supplier.Phone, Email: cfg.Supplier.Email}

	alertService := service.NewAlertService(repos, log)
	quoteService := service.NewQuoteService(repos, validate, alertService, supplier, log)
	workOrderService := service.NewWorkOrderService(repos, validate, alertService, supplier)
	authService := service.NewAuthService(repos, auth.NewManager(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL), revocations)

	handler := httphandler.NewHandler(httphandler.Services{
		Auth:       authService,
		Clients:    service.NewClientService(repos, validate, cfg.Clients.ProtectedCodes),
		Users:      service.NewUserService(repos, validate),
		Quotes:     quoteService,
		WorkOrders: workOrderService,
		Alerts:     alertService,
		Exports:    service.NewExportService(repos, quoteService, workOrderService, excel.NewGenerator(), pdf.NewGenerator()),
	}, log)
	router := httphandler.NewRouter(handler, middleware.Auth(authService), cfg.Environment, cfg.HTTP.AllowedOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		quoteService.RunExpirySweeper(ctx, cfg.Quotes.ExpirySweepInterval)
	}()

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting maintenance portal service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
		stop()
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	<-sweeperDone

	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}

// newRevocations uses redis when an address is configured and falls back to
// process memory otherwise.
func newRevocations(cfg *config.Config, log zerolog.Logger) (auth.Revocations, func()) {
	if cfg.Redis.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set; token revocations are kept in memory")
		return auth.NewMemoryRevocations(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect redis")
	}
	return auth.NewRedisRevocations(rdb), func() { _ = rdb.Close() }
}
