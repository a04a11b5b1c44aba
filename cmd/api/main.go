package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	_ "github.com/ThimethZ03/utility-billing-system2/docs"
	"github.com/ThimethZ03/utility-billing-system2/internal/api/handlers"
	"github.com/ThimethZ03/utility-billing-system2/internal/api/router"
	"github.com/ThimethZ03/utility-billing-system2/internal/config"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/notify"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/validator"
	"github.com/ThimethZ03/utility-billing-system2/internal/repository/memory"
	"github.com/ThimethZ03/utility-billing-system2/internal/repository/postgres"
	"github.com/ThimethZ03/utility-billing-system2/internal/repository/redis"
	"github.com/ThimethZ03/utility-billing-system2/internal/services"
	"github.com/ThimethZ03/utility-billing-system2/internal/worker"
	"github.com/ThimethZ03/utility-billing-system2/migrations"
)

// @title Utility Usage Monitor API
// @version 1.0
// @description Forecasts monthly utility usage and alerts when limits are crossed.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})

	if err := run(cfg, log); err != nil {
		log.ErrorWithErr(err, "Server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	db, err := postgres.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	migrationsFS, err := migrations.GetFS(cfg.Database.Driver)
	if err != nil {
		return err
	}
	applied, err := postgres.RunMigrations(db, migrationsFS)
	if err != nil {
		return err
	}
	log.WithFields(map[string]interface{}{
		"driver":  cfg.Database.Driver,
		"applied": len(applied),
	}).Info("Database ready")

	billRepo := postgres.NewBillRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	feedRepo := postgres.NewFeedRepository(db)
	logRepo := postgres.NewNotificationLogRepository(db)

	var cooldowns alert.CooldownStore = memory.NewCooldownStore()
	var cachePinger handlers.Pinger
	if cfg.Redis.Enabled {
		client := redis.NewClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()
		store := redis.NewCooldownStore(client)
		if err := store.Ping(context.Background()); err != nil {
			return fmt.Errorf("redis unavailable at %s: %w", cfg.Redis.Addr(), err)
		}
		cooldowns = store
		cachePinger = handlers.PingFunc(store.Ping)
		log.With("addr", cfg.Redis.Addr()).Info("Using Redis cooldown store")
	}

	sender, err := notify.NewSender(notify.Config{
		Provider: cfg.Email.Provider,
		SMTP: notify.SMTPConfig{
			Host:        cfg.Email.SMTPHost,
			Port:        cfg.Email.SMTPPort,
			Username:    cfg.Email.SMTPUsername,
			Password:    cfg.Email.SMTPPassword,
			From:        cfg.Email.SMTPFrom,
			UseTLS:      cfg.Email.SMTPStartTLS,
			UseImplicit: cfg.Email.SMTPImplicit,
			SkipVerify:  cfg.Email.SMTPSkipVerify,
		},
		FormAPIEndpoint:  cfg.Email.FormAPIEndpoint,
		FormAPIAccessKey: cfg.Email.FormAPIAccessKey,
		FromName:         cfg.Email.FromName,
		Timeout:          cfg.Alerts.SendTimeout,
	})
	if err != nil {
		return err
	}

	loc := cfg.Alerts.Location()
	composer, err := notify.NewAlertComposer(cfg.Email.AppName, loc)
	if err != nil {
		return err
	}

	settingsService := services.NewSettingsService(settingsRepo, log)
	aggregator := services.NewTimeSeriesAggregator(cfg.Alerts.Window, loc, log)
	engine := services.NewForecastEngine()
	evaluator := services.NewThresholdEvaluator()
	dedup := services.NewAlertDeduplicator(cooldowns, cfg.Alerts.Cooldown, log)
	dispatcher := services.NewNotificationDispatcher(sender, composer, dedup, feedRepo,
		services.DispatcherConfig{
			SendTimeout:     cfg.Alerts.SendTimeout,
			DispatchTimeout: cfg.Alerts.DispatchTimeout,
			MaxConcurrency:  cfg.Alerts.MaxConcurrency,
		},
		log,
		services.WithDeliveryLog(logRepo),
	)
	monitorService := services.NewMonitorService(billRepo, settingsService, aggregator, engine, evaluator, dispatcher,
		services.MonitorConfig{FetchTimeout: cfg.Alerts.FetchTimeout, Location: loc},
		log,
	)

	val := validator.New()
	h := &router.Handlers{
		Health:   handlers.NewHealthHandler(db, cachePinger, log),
		Forecast: handlers.NewForecastHandler(engine, monitorService, log, val),
		Alert:    handlers.NewAlertHandler(monitorService, settingsService, feedRepo, logRepo, dispatcher, dedup, log, val),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checkerDone := make(chan struct{})
	if cfg.Scheduler.Enabled {
		checker, err := worker.NewThresholdChecker(monitorService, cfg.Scheduler.Spec, cfg.Scheduler.Timeout, log)
		if err != nil {
			return err
		}
		go func() {
			defer close(checkerDone)
			checker.Start(ctx)
		}()
	} else {
		close(checkerDone)
	}

	errCh := make(chan error, 1)
	go func() {
		log.With("addr", srv.Addr).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "HTTP server shutdown error")
	}

	select {
	case <-checkerDone:
	case <-shutdownCtx.Done():
		log.Warn("Threshold checker did not stop before the shutdown timeout")
	}
	return nil
}
