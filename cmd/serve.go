package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/shenikar/livestock_alerts/internal/config"
	"github.com/shenikar/livestock_alerts/internal/fanout"
	v1 "github.com/shenikar/livestock_alerts/internal/handler/http/v1"
	"github.com/shenikar/livestock_alerts/internal/metrics"
	"github.com/shenikar/livestock_alerts/internal/notify"
	"github.com/shenikar/livestock_alerts/internal/repository"
	"github.com/shenikar/livestock_alerts/internal/service"
	"github.com/shenikar/livestock_alerts/pkg/logger"
	"github.com/shenikar/livestock_alerts/pkg/postgres"
	redisclient "github.com/shenikar/livestock_alerts/pkg/redis"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	_ "github.com/shenikar/livestock_alerts/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the notification fan-out worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Загрузка конфигурации
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log := logger.New(cfg.LogLevel, cfg.LogFormat)

			if !skipMigrations {
				if err := runMigrations(cfg, log); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on startup")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, log *logrus.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
		}); err != nil {
			return fmt.Errorf("failed to init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Инициализация репозиториев
	alertRepo := repository.NewAlertRepository(dbpool, cfg.DBOpTimeout)
	alertCache := repository.NewAlertCache(redisClient, cfg.CacheTTL)
	directoryRepo := repository.NewDirectoryRepository(dbpool, cfg.DBOpTimeout)
	outboxRepo := repository.NewOutboxRepository(dbpool, cfg.DBOpTimeout)

	queue := fanout.NewRedisQueue(redisClient)
	appMetrics := metrics.New()

	// Каналы доставки и рассылка
	notifiers, err := notify.NewNotifiers(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init notifiers: %w", err)
	}
	engine := fanout.NewEngine(outboxRepo, directoryRepo, alertRepo, notifiers, appMetrics, log, fanout.Options{
		MaxAttempts:    cfg.NotifyMaxAttempts,
		BaseDelay:      cfg.NotifyBaseDelay,
		AttemptTimeout: cfg.NotifyTimeout,
		Concurrency:    cfg.NotifyConcurrency,
		Lease:          cfg.OutboxLease,
	})

	worker := fanout.NewWorker(queue, engine, log)
	worker.Start(ctx)
	defer worker.Stop()

	sweeper := fanout.NewSweeper(outboxRepo, queue, log, fanout.SweeperOptions{
		Schedule:  cfg.OutboxSweepSchedule,
		OlderThan: cfg.OutboxLease,
		MaxClaims: cfg.OutboxMaxClaims,
	})
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	// Инициализация сервисов и хэндлеров
	alertService := service.NewAlertService(alertRepo, alertCache, queue, log)
	handler := v1.NewHandler(alertService, v1.NewAuthenticator(cfg.JWTSecret, log), log,
		v1.HealthCheck{Name: "database", Ping: dbpool.Ping},
		v1.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
	)

	// Настройка Gin роутера
	router := gin.New()
	router.Use(gin.Recovery(), v1.RequestLogger(log, appMetrics))
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(appMetrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal, shutting down server...")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("error starting HTTP server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server gracefully stopped")
	return nil
}
