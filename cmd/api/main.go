// @title Event Manager Courtesy API
// @version 1.0
// @description Complimentary access grants for events: grant, cancel and report courtesies.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventmanager/config"
	_ "eventmanager/docs"
	"eventmanager/internal/adapters/auth"
	"eventmanager/internal/adapters/queue"
	httpdelivery "eventmanager/internal/delivery/http"
	"eventmanager/internal/delivery/http/controllers"
	"eventmanager/internal/domain"
	"eventmanager/internal/i18n"
	"eventmanager/internal/repository/postgres"
	"eventmanager/internal/services"

	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.PingContext(ctx)
	cancel()
	if err != nil {
		logger.Error("ping database", "error", err)
		os.Exit(1)
	}

	var dispatcher domain.NotificationDispatcher
	if cfg.Redis.Addr != "" {
		rdb, err := queue.Connect(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Error("redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		dispatcher = queue.NewDispatcher(queue.NewQueue(rdb, cfg.Redis.Queue, logger))
	} else {
		logger.Warn("REDIS_ADDR not set, courtesy notifications are disabled")
		dispatcher = queue.NewNoopDispatcher(logger)
	}

	uow := postgres.NewUnitOfWork(db)
	courtesyService := services.NewCourtesyService(
		uow,
		services.NewIdentityResolver(time.Now),
		services.NewAttendeeMaterializer(time.Now),
		dispatcher,
		logger,
		cfg.ContextTimeout,
	)

	localizer := i18n.NewLocalizer(cfg.DefaultLocale)
	courtesyController := controllers.NewCourtesyController(logger, courtesyService, localizer)
	router := httpdelivery.NewRouter(courtesyController, httpdelivery.RouterConfig{
		Verifier:       auth.NewJWT(cfg.JWTSecret),
		Localizer:      localizer,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	logger.Info("server stopped")
}
